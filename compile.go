package oamap

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/reoring/oamap/internal/naming"
)

// CompileOptions configures Compile. The zero value is usable.
type CompileOptions struct {
	// Prefix starts every derived array name ("object" when empty).
	Prefix string
	// Delimiter joins prefixes and tags ("-" when empty).
	Delimiter string
	// MaskDType is the element type of mask arrays; it must be a signed
	// integer type so that the sentinel fits (DefaultMaskDType when unset).
	MaskDType DType
	// Logger receives debug records about compile decisions. Nil discards.
	Logger *slog.Logger
}

// Compile validates s and converts it into an immutable Tree with every array
// name finalized. Problems are collected and returned together as Issues.
//
// Pointers are resolved after the main pass: a pointer whose target already
// appears in the tree (or in an enclosing compile scope) is bound to that
// node, otherwise the target is compiled fresh under the pointer's prefix
// extended with "P".
func Compile(s Schema, opts ...CompileOptions) (*Tree, error) {
	var o CompileOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	root := naming.Root(o.Prefix, o.Delimiter)
	if o.MaskDType == DTypeInvalid {
		o.MaskDType = DefaultMaskDType
	}
	log := o.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &compiler{
		tree: &Tree{
			slots:     make(map[string]int),
			prefix:    root.Prefix,
			delimiter: root.Delimiter,
			maskDType: o.MaskDType,
		},
		log: log,
	}
	if !o.MaskDType.IsSigned() {
		c.issuef("", CodeInvalidDType, "mask dtype must be a signed integer, not %s", o.MaskDType)
	}

	id := c.compileScope(s, root, "", nil)
	c.checkPointerChains()
	if len(c.issues) > 0 {
		return nil, c.issues
	}
	c.tree.root = id
	log.Debug("schema compiled", "nodes", len(c.tree.nodes), "arrays", len(c.tree.arrays), "prefix", root.Prefix)
	return c.tree, nil
}

type compiler struct {
	tree   *Tree
	issues Issues
	log    *slog.Logger
}

// scope is one compile pass. Fresh pointer targets open a nested scope whose
// lookups fall back to the enclosing ones.
type scope struct {
	parent  *scope
	memo    map[Schema]TypeID
	active  map[Schema]bool
	pending []pendingTarget
}

type pendingTarget struct {
	pointer TypeID
	target  Schema
	path    naming.Path
	spath   string
}

func (sc *scope) lookup(s Schema) (TypeID, bool) {
	for cur := sc; cur != nil; cur = cur.parent {
		if id, ok := cur.memo[s]; ok {
			return id, true
		}
	}
	return -1, false
}

func (c *compiler) issuef(path, code, format string, a ...any) {
	c.issues = AppendIssues(c.issues, newIssue(path, code, fmt.Sprintf(format, a...))...)
}

func (c *compiler) compileScope(s Schema, path naming.Path, spath string, parent *scope) TypeID {
	sc := &scope{parent: parent, memo: make(map[Schema]TypeID), active: make(map[Schema]bool)}
	id := c.compileNode(s, path, spath, sc)
	for i := 0; i < len(sc.pending); i++ {
		p := sc.pending[i]
		ptr := c.tree.nodes[p.pointer]
		if tid, ok := sc.lookup(p.target); ok {
			ptr.target = tid
			ptr.targetShared = true
			c.log.Debug("pointer target bound", "pointer", p.pointer, "target", tid)
			continue
		}
		tid := c.compileScope(p.target, p.path.Target(), p.spath+"/target", sc)
		ptr.target = tid
		c.log.Debug("pointer target compiled", "pointer", p.pointer, "target", tid, "prefix", p.path.Target().Prefix)
	}
	return id
}

func (c *compiler) ref(name string) ArrayRef {
	slot, ok := c.tree.slots[name]
	if !ok {
		slot = len(c.tree.arrays)
		c.tree.arrays = append(c.tree.arrays, name)
		c.tree.slots[name] = slot
	}
	return ArrayRef{Name: name, Slot: slot}
}

func (c *compiler) compileNode(s Schema, path naming.Path, spath string, sc *scope) TypeID {
	if isNilSchema(s) {
		c.issuef(spath, CodeInvalidSchema, "member is nil, not a schema")
		return -1
	}
	if sc.active[s] {
		c.issuef(spath, CodeSelfReference, "%s", s.Kind())
		return -1
	}
	sc.active[s] = true
	defer delete(sc.active, s)

	nullable, mask, name := s.common()
	t := &Type{
		tree:     c.tree,
		id:       TypeID(len(c.tree.nodes)),
		kind:     s.Kind(),
		name:     name,
		nullable: nullable,
		mask:     noArray,
		data:     noArray,
		starts:   noArray,
		stops:    noArray,
		content:  -1,
		tags:     noArray,
		offsets:  noArray,
		indexes:  noArray,
		target:   -1,
	}
	c.tree.nodes = append(c.tree.nodes, t)
	if _, seen := sc.memo[s]; !seen {
		sc.memo[s] = t.id
	}
	if nullable {
		t.mask = c.ref(path.Or(mask, naming.TagMask))
	}

	switch n := s.(type) {
	case *Primitive:
		if !n.DType.Valid() {
			c.issuef(spath, CodeInvalidDType, "%s is not convertible to a dtype", n.DType)
		}
		for i, d := range n.Dims {
			if d < 0 {
				c.issuef(spath+"/dims/"+strconv.Itoa(i), CodeInvalidSchema, "dims must be non-negative integers, not %d", d)
			}
		}
		t.dtype = n.DType
		t.dims = append([]int(nil), n.Dims...)
		t.data = c.ref(path.Data(n.Data))

	case *List:
		t.starts = c.ref(path.Or(n.Starts, naming.TagStarts))
		t.stops = c.ref(path.Or(n.Stops, naming.TagStops))
		t.content = c.compileNode(n.Content, path.Content(), spath+"/content", sc)

	case *Union:
		if len(n.Possibilities) == 0 {
			c.issuef(spath, CodeInvalidSchema, "union needs at least one possibility")
		}
		t.tags = c.ref(path.Or(n.Tags, naming.TagTags))
		t.offsets = c.ref(path.Or(n.Offsets, naming.TagOffsets))
		t.possibilities = make([]TypeID, len(n.Possibilities))
		for i, p := range n.Possibilities {
			t.possibilities[i] = c.compileNode(p, path.Possibility(i), spath+"/possibilities/"+strconv.Itoa(i), sc)
		}

	case *Record:
		t.fields = make([]fieldEntry, 0, len(n.Fields))
		t.fieldIndex = make(map[string]int, len(n.Fields))
		for _, f := range n.Fields {
			fpath := spath + "/fields/" + f.Name
			if !naming.IsIdentifier(f.Name) {
				c.issuef(fpath, CodeInvalidName, "field name %q does not match [a-zA-Z_][a-zA-Z_0-9]*", f.Name)
				continue
			}
			if _, dup := t.fieldIndex[f.Name]; dup {
				c.issuef(fpath, CodeInvalidName, "duplicate field name %q", f.Name)
				continue
			}
			t.fieldIndex[f.Name] = len(t.fields)
			t.fields = append(t.fields, fieldEntry{name: f.Name, id: c.compileNode(f.Schema, path.Field(f.Name), fpath, sc)})
		}

	case *Tuple:
		t.types = make([]TypeID, len(n.Types))
		for i, x := range n.Types {
			t.types[i] = c.compileNode(x, path.Item(i), spath+"/types/"+strconv.Itoa(i), sc)
		}

	case *Pointer:
		t.indexes = c.ref(path.Or(n.Indexes, naming.TagIndexes))
		if isNilSchema(n.Target) {
			c.issuef(spath+"/target", CodeInvalidSchema, "pointer target is nil, not a schema")
			break
		}
		sc.pending = append(sc.pending, pendingTarget{pointer: t.id, target: n.Target, path: path, spath: spath})
	}
	return t.id
}

// checkPointerChains rejects pointers whose target chain never reaches a
// non-pointer node.
func (c *compiler) checkPointerChains() {
	for _, t := range c.tree.nodes {
		if t.kind != KindPointer || t.target < 0 {
			continue
		}
		seen := map[TypeID]bool{t.id: true}
		for cur := c.tree.nodes[t.target]; cur.kind == KindPointer && cur.target >= 0; cur = c.tree.nodes[cur.target] {
			if seen[cur.id] {
				c.issuef("", CodeSelfReference, "pointer #%d only reaches pointers", t.id)
				break
			}
			seen[cur.id] = true
		}
	}
}
