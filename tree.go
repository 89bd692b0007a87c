package oamap

import (
	"fmt"
	"strings"
	"sync"
)

// TypeID addresses a Type within its Tree. Identity of compiled nodes is
// TypeID equality.
type TypeID int

// ArrayRef names a backing array and its slot in the tree's array table.
// Slot is -1 when the reference is unused by the node's kind.
type ArrayRef struct {
	Name string
	Slot int
}

// Valid reports whether the reference names an array.
func (r ArrayRef) Valid() bool { return r.Slot >= 0 }

var noArray = ArrayRef{Slot: -1}

// FieldType is an entry of a record's ordered field table.
type FieldType struct {
	Name string
	Type *Type
}

// Type is a compiled, immutable schema node. Only the accessors matching
// Kind() carry meaningful values; the others return zero values.
type Type struct {
	tree     *Tree
	id       TypeID
	kind     Kind
	name     string
	nullable bool
	mask     ArrayRef

	// Primitive
	dtype DType
	dims  []int
	data  ArrayRef

	// List
	starts  ArrayRef
	stops   ArrayRef
	content TypeID

	// Union
	tags          ArrayRef
	offsets       ArrayRef
	possibilities []TypeID

	// Record
	fields     []fieldEntry
	fieldIndex map[string]int

	// Tuple
	types []TypeID

	// Pointer
	indexes      ArrayRef
	target       TypeID
	targetShared bool
}

type fieldEntry struct {
	name string
	id   TypeID
}

func (t *Type) ID() TypeID     { return t.id }
func (t *Type) Kind() Kind     { return t.kind }
func (t *Type) Name() string   { return t.name }
func (t *Type) Tree() *Tree    { return t.tree }
func (t *Type) Nullable() bool { return t.nullable }

// Mask is the mask array of a nullable node.
func (t *Type) Mask() ArrayRef { return t.mask }

// MaskValue is the sentinel marking an absent position.
func (t *Type) MaskValue() int64 { return MaskedValue }

// MaskDType is the element type (and width) of the mask array.
func (t *Type) MaskDType() DType { return t.tree.maskDType }

func (t *Type) DType() DType { return t.dtype }

// Dims returns a copy of the primitive's fixed shape.
func (t *Type) Dims() []int { return append([]int(nil), t.dims...) }

// BlockSize is the number of data elements one primitive value spans.
func (t *Type) BlockSize() int64 {
	n := int64(1)
	for _, d := range t.dims {
		n *= int64(d)
	}
	return n
}

func (t *Type) Data() ArrayRef   { return t.data }
func (t *Type) Starts() ArrayRef { return t.starts }
func (t *Type) Stops() ArrayRef  { return t.stops }

// Content is the element type of a list.
func (t *Type) Content() *Type {
	if t.kind != KindList {
		return nil
	}
	return t.tree.Type(t.content)
}

func (t *Type) Tags() ArrayRef    { return t.tags }
func (t *Type) Offsets() ArrayRef { return t.offsets }

// Possibilities returns the union's possible types in tag order.
func (t *Type) Possibilities() []*Type { return t.tree.types(t.possibilities) }

// Fields returns the record's ordered field table.
func (t *Type) Fields() []FieldType {
	out := make([]FieldType, len(t.fields))
	for i, f := range t.fields {
		out[i] = FieldType{Name: f.name, Type: t.tree.Type(f.id)}
	}
	return out
}

// Field returns the type of the named record field.
func (t *Type) Field(name string) (*Type, bool) {
	i, ok := t.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return t.tree.Type(t.fields[i].id), true
}

// Types returns a tuple's positional types.
func (t *Type) Types() []*Type { return t.tree.types(t.types) }

func (t *Type) Indexes() ArrayRef { return t.indexes }

// Target is the type a pointer resolves into.
func (t *Type) Target() *Type {
	if t.kind != KindPointer {
		return nil
	}
	return t.tree.Type(t.target)
}

// TargetShared reports whether the pointer's target is a node that also
// appears elsewhere in the tree (as opposed to a freshly compiled subtree).
func (t *Type) TargetShared() bool { return t.targetShared }

// Arrays lists the arrays this node reads directly, in a fixed order.
func (t *Type) Arrays() []ArrayRef {
	var out []ArrayRef
	add := func(r ArrayRef) {
		if r.Valid() {
			out = append(out, r)
		}
	}
	add(t.mask)
	add(t.data)
	add(t.starts)
	add(t.stops)
	add(t.tags)
	add(t.offsets)
	add(t.indexes)
	return out
}

func (t *Type) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", t.id, t.kind)
	if t.name != "" {
		fmt.Fprintf(&b, " %q", t.name)
	}
	switch t.kind {
	case KindPrimitive:
		fmt.Fprintf(&b, " %s", t.dtype)
		if len(t.dims) > 0 {
			fmt.Fprintf(&b, " dims=%v", t.dims)
		}
		fmt.Fprintf(&b, " data=%s", t.data.Name)
	case KindList:
		fmt.Fprintf(&b, " starts=%s stops=%s content=#%d", t.starts.Name, t.stops.Name, t.content)
	case KindUnion:
		fmt.Fprintf(&b, " tags=%s offsets=%s possibilities=%v", t.tags.Name, t.offsets.Name, t.possibilities)
	case KindRecord:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = fmt.Sprintf("%s:#%d", f.name, f.id)
		}
		fmt.Fprintf(&b, " {%s}", strings.Join(parts, ", "))
	case KindTuple:
		fmt.Fprintf(&b, " %v", t.types)
	case KindPointer:
		fmt.Fprintf(&b, " indexes=%s target=#%d", t.indexes.Name, t.target)
		if t.targetShared {
			b.WriteString(" (shared)")
		}
	}
	if t.nullable {
		fmt.Fprintf(&b, " mask=%s", t.mask.Name)
	}
	return b.String()
}

// Tree is a compiled schema: an immutable arena of Types plus the table of
// array names they read. A Tree is safe for concurrent use.
type Tree struct {
	nodes     []*Type
	root      TypeID
	arrays    []string
	slots     map[string]int
	prefix    string
	delimiter string
	maskDType DType

	fpOnce sync.Once
	fp     string
}

// Root is the type the schema was compiled from.
func (tr *Tree) Root() *Type { return tr.nodes[tr.root] }

// Type returns the node with the given id, or nil.
func (tr *Tree) Type(id TypeID) *Type {
	if id < 0 || int(id) >= len(tr.nodes) {
		return nil
	}
	return tr.nodes[id]
}

// Len is the number of compiled nodes.
func (tr *Tree) Len() int { return len(tr.nodes) }

// Nodes returns every compiled node in id order.
func (tr *Tree) Nodes() []*Type { return append([]*Type(nil), tr.nodes...) }

// Arrays is the array table: distinct array names indexed by slot.
func (tr *Tree) Arrays() []string { return append([]string(nil), tr.arrays...) }

// Slot returns the slot of an array name.
func (tr *Tree) Slot(name string) (int, bool) {
	s, ok := tr.slots[name]
	return s, ok
}

// Prefix and Delimiter are the naming parameters the tree was compiled with.
func (tr *Tree) Prefix() string    { return tr.prefix }
func (tr *Tree) Delimiter() string { return tr.delimiter }

// MaskDType is the mask element type used by all nullable nodes of the tree.
func (tr *Tree) MaskDType() DType { return tr.maskDType }

func (tr *Tree) String() string {
	var b strings.Builder
	for i, n := range tr.nodes {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(n.String())
	}
	return b.String()
}

func (tr *Tree) types(ids []TypeID) []*Type {
	out := make([]*Type, len(ids))
	for i, id := range ids {
		out[i] = tr.nodes[id]
	}
	return out
}

// reachable lists the ids reachable from id, in depth-first discovery order,
// following pointer targets.
func (tr *Tree) reachable(id TypeID) []TypeID {
	seen := make(map[TypeID]bool)
	var out []TypeID
	var walk func(TypeID)
	walk = func(id TypeID) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		t := tr.nodes[id]
		switch t.kind {
		case KindList:
			walk(t.content)
		case KindUnion:
			for _, p := range t.possibilities {
				walk(p)
			}
		case KindRecord:
			for _, f := range t.fields {
				walk(f.id)
			}
		case KindTuple:
			for _, x := range t.types {
				walk(x)
			}
		case KindPointer:
			walk(t.target)
		}
	}
	walk(id)
	return out
}

// Members lists every node reachable from t (t first), following pointers.
func (t *Type) Members() []*Type { return t.tree.types(t.tree.reachable(t.id)) }
