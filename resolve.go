package oamap

import (
	"fmt"
	"sync/atomic"
)

// Baggage binds a Tree to the arrays and cache of one data source. It holds
// the per-slot array table and is safe for concurrent resolutions as long as
// the Cache is.
type Baggage struct {
	tree   *Tree
	arrays Arrays
	cache  Cache
	slots  []atomic.Pointer[bound]
}

type bound struct{ a Array }

// Bind prepares tree for resolution against arrays. Arrays are fetched lazily
// on first use and memoized in cache (a new concurrent cache when nil).
func Bind(tree *Tree, arrays Arrays, cache Cache) *Baggage {
	if cache == nil {
		cache = NewCache()
	}
	return &Baggage{
		tree:   tree,
		arrays: arrays,
		cache:  cache,
		slots:  make([]atomic.Pointer[bound], len(tree.arrays)),
	}
}

func (b *Baggage) Tree() *Tree    { return b.tree }
func (b *Baggage) Arrays() Arrays { return b.arrays }
func (b *Baggage) Cache() Cache   { return b.cache }

// Slot returns the array bound to a slot of the tree's array table.
func (b *Baggage) Slot(slot int) (Array, error) {
	if slot < 0 || slot >= len(b.slots) {
		return nil, newIssue("", CodeBackendInvariant, fmt.Sprintf("array slot %d outside table of %d", slot, len(b.slots)))
	}
	if p := b.slots[slot].Load(); p != nil {
		return p.a, nil
	}
	name := b.tree.arrays[slot]
	a, ok := b.cache.Load(name)
	if !ok {
		if b.arrays == nil {
			return nil, newIssue("", CodeMissingArray, name, "array", name)
		}
		var err error
		a, err = b.arrays.Array(name)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, newIssue("", CodeMissingArray, name, "array", name)
		}
		b.cache.Store(name, a)
	}
	b.slots[slot].Store(&bound{a: a})
	return a, nil
}

// Get resolves the root type at position at.
func (b *Baggage) Get(at int64) (any, error) { return b.resolve(b.tree.Root(), at) }

// Resolve maps (t, position) to a value: a Go scalar for primitives, a Block
// for primitives with dims, a ListView, RecordView or TupleView, or nil for an
// absent nullable position. t must belong to the bound tree.
func (b *Baggage) Resolve(t *Type, at int64) (any, error) {
	if t == nil || t.tree != b.tree {
		return nil, newIssue("", CodeBackendInvariant, "type does not belong to the bound tree")
	}
	return b.resolve(t, at)
}

// hop is one (type, position) visited while following unions and pointers.
type hop struct {
	id TypeID
	at int64
}

// resolve follows masks, union tags and pointer indexes until it reaches a
// primitive, list, record or tuple. A chain that returns to a visited
// (type, position) fails instead of looping.
func (b *Baggage) resolve(t *Type, at int64) (any, error) {
	var seen []hop
	for {
		if t.nullable {
			m, err := b.readMask(t, at)
			if err != nil {
				return nil, err
			}
			if m == MaskedValue {
				return nil, nil
			}
			at = m
		}

		var next TypeID
		switch t.kind {
		case KindPointer:
			next = t.target
			if !t.nullable {
				idx, err := b.readInt(t.indexes, at)
				if err != nil {
					return nil, err
				}
				at = idx
			}
			// a nullable pointer's mask entry is already the target index

		case KindUnion:
			tag, err := b.readInt(t.tags, at)
			if err != nil {
				return nil, err
			}
			if tag < 0 || tag >= int64(len(t.possibilities)) {
				return nil, newIssue("", CodeOutOfRange, fmt.Sprintf("tag %d at %s[%d] selects none of %d possibilities", tag, t.tags.Name, at, len(t.possibilities)))
			}
			offset, err := b.readInt(t.offsets, at)
			if err != nil {
				return nil, err
			}
			next, at = t.possibilities[tag], offset

		default:
			return b.resolveBare(t, at)
		}

		t = b.tree.nodes[next]
		h := hop{id: t.id, at: at}
		for _, v := range seen {
			if v == h {
				return nil, newIssue("", CodeOutOfRange, fmt.Sprintf("union/pointer chain returns to %s #%d at position %d", t.kind, t.id, at),
					"type", int(t.id), "at", at)
			}
		}
		seen = append(seen, h)
	}
}

func (b *Baggage) resolveBare(t *Type, at int64) (any, error) {
	switch t.kind {
	case KindPrimitive:
		if len(t.dims) > 0 {
			return b.block(t, at)
		}
		a, err := b.data(t)
		if err != nil {
			return nil, err
		}
		if err := checkBounds(t.data.Name, a, at); err != nil {
			return nil, err
		}
		return a.Value(at), nil

	case KindList:
		start, err := b.readInt(t.starts, at)
		if err != nil {
			return nil, err
		}
		stop, err := b.readInt(t.stops, at)
		if err != nil {
			return nil, err
		}
		if stop < start {
			return nil, newIssue("", CodeOutOfRange, fmt.Sprintf("%s[%d]=%d is before %s[%d]=%d", t.stops.Name, at, stop, t.starts.Name, at, start))
		}
		return ListView{bag: b, typ: t, whence: start, stride: 1, length: stop - start}, nil

	case KindRecord:
		return RecordView{bag: b, typ: t, index: at}, nil

	case KindTuple:
		return TupleView{bag: b, typ: t, index: at}, nil
	}
	return nil, newIssue("", CodeBackendInvariant, fmt.Sprintf("unrecognized kind %s", t.kind))
}

func (b *Baggage) data(t *Type) (Array, error) {
	a, err := b.Slot(t.data.Slot)
	if err != nil {
		return nil, err
	}
	if a.DType() != t.dtype {
		return nil, newIssue("", CodeDTypeMismatch, fmt.Sprintf("%s holds %s, schema says %s", t.data.Name, a.DType(), t.dtype), "array", t.data.Name)
	}
	return a, nil
}

func (b *Baggage) block(t *Type, at int64) (any, error) {
	a, err := b.data(t)
	if err != nil {
		return nil, err
	}
	size := t.BlockSize()
	if at < 0 || (size > 0 && (at+1)*size > a.Len()) {
		return nil, newIssue("", CodeOutOfRange, fmt.Sprintf("block %d of size %d outside %s (length %d)", at, size, t.data.Name, a.Len()),
			"array", t.data.Name, "at", at, "len", a.Len())
	}
	return Block{bag: b, data: a, typ: t, offset: at * size}, nil
}

// readMask reads a mask entry. Mask arrays must have the tree's mask dtype so
// that the sentinel is representable.
func (b *Baggage) readMask(t *Type, at int64) (int64, error) {
	a, err := b.Slot(t.mask.Slot)
	if err != nil {
		return 0, err
	}
	if a.DType() != b.tree.maskDType {
		return 0, newIssue("", CodeDTypeMismatch, fmt.Sprintf("%s holds %s, masks are %s", t.mask.Name, a.DType(), b.tree.maskDType), "array", t.mask.Name)
	}
	if err := checkBounds(t.mask.Name, a, at); err != nil {
		return 0, err
	}
	return a.Int(at), nil
}

// readInt reads an integer-typed structural array (mask, starts, stops, tags,
// offsets, indexes) with bounds checking.
func (b *Baggage) readInt(ref ArrayRef, at int64) (int64, error) {
	a, err := b.Slot(ref.Slot)
	if err != nil {
		return 0, err
	}
	if !a.DType().IsInteger() {
		return 0, newIssue("", CodeDTypeMismatch, fmt.Sprintf("%s holds %s, an integer dtype is required", ref.Name, a.DType()), "array", ref.Name)
	}
	if err := checkBounds(ref.Name, a, at); err != nil {
		return 0, err
	}
	return a.Int(at), nil
}

func checkBounds(name string, a Array, at int64) error {
	if at < 0 || at >= a.Len() {
		return newIssue("", CodeOutOfRange, fmt.Sprintf("%s[%d] (length %d)", name, at, a.Len()), "array", name, "at", at, "len", a.Len())
	}
	return nil
}

// IsAbsent reports whether a resolved value is the absent result of a
// nullable node.
func IsAbsent(v any) bool { return v == nil }

// Resolve is the free-function form of Baggage.Resolve for one-off lookups.
func Resolve(t *Type, arrays Arrays, at int64) (any, error) {
	if t == nil {
		return nil, newIssue("", CodeBackendInvariant, "nil type")
	}
	return Bind(t.tree, arrays, nil).resolve(t, at)
}
