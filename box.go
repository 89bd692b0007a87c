package oamap

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Boxed is the flat form of a view handed across a native boundary: the
// schema identity, borrowed handles to the arrays and cache, and the position
// descriptor. Boxing and unboxing never copy array contents.
type Boxed struct {
	Tree   *Tree
	Type   TypeID
	Arrays Arrays
	Cache  Cache
	// Valid is false for an absent value; such a box unboxes to nil.
	Valid bool
	// Whence, Stride and Length describe list views.
	Whence int64
	Stride int64
	Length int64
	// Index is the position of a record, tuple or block.
	Index int64
}

// Box flattens a resolved view into a Boxed. Scalars have no position and are
// not boxable.
func Box(v any) (Boxed, error) {
	switch x := v.(type) {
	case ListView:
		if x.bag == nil {
			return Boxed{}, newIssue("", CodeBackendInvariant, "cannot box an unbound list view")
		}
		return x.bag.boxed(x.typ, Boxed{Whence: x.whence, Stride: x.stride, Length: x.length}), nil
	case RecordView:
		if x.bag == nil {
			return Boxed{}, newIssue("", CodeBackendInvariant, "cannot box an unbound record view")
		}
		return x.bag.boxed(x.typ, Boxed{Index: x.index}), nil
	case TupleView:
		if x.bag == nil {
			return Boxed{}, newIssue("", CodeBackendInvariant, "cannot box an unbound tuple view")
		}
		return x.bag.boxed(x.typ, Boxed{Index: x.index}), nil
	case Block:
		if x.bag == nil {
			return Boxed{}, newIssue("", CodeBackendInvariant, "cannot box an unbound block")
		}
		var idx int64
		if size := x.typ.BlockSize(); size > 0 {
			idx = x.offset / size
		}
		return x.bag.boxed(x.typ, Boxed{Index: idx}), nil
	}
	return Boxed{}, newIssue("", CodeBackendInvariant, fmt.Sprintf("cannot box %T", v))
}

func (b *Baggage) boxed(t *Type, pos Boxed) Boxed {
	pos.Tree, pos.Type, pos.Arrays, pos.Cache, pos.Valid = b.tree, t.id, b.arrays, b.cache, true
	return pos
}

// Unbox rebuilds the view a Boxed describes against the same arrays and cache.
func Unbox(bx Boxed) (any, error) {
	if !bx.Valid {
		return nil, nil
	}
	if bx.Tree == nil {
		return nil, newIssue("", CodeBackendInvariant, "boxed value has no tree")
	}
	t := bx.Tree.Type(bx.Type)
	if t == nil {
		return nil, newIssue("", CodeBackendInvariant, fmt.Sprintf("type #%d not in tree", bx.Type))
	}
	bag := Bind(bx.Tree, bx.Arrays, bx.Cache)
	switch t.kind {
	case KindList:
		if bx.Length < 0 {
			return nil, newIssue("", CodeBackendInvariant, fmt.Sprintf("negative list length %d", bx.Length))
		}
		return ListView{bag: bag, typ: t, whence: bx.Whence, stride: bx.Stride, length: bx.Length}, nil
	case KindRecord:
		return RecordView{bag: bag, typ: t, index: bx.Index}, nil
	case KindTuple:
		return TupleView{bag: bag, typ: t, index: bx.Index}, nil
	case KindPrimitive:
		if len(t.dims) > 0 {
			return bag.block(t, bx.Index)
		}
	}
	return nil, newIssue("", CodeBackendInvariant, fmt.Sprintf("%s #%d is not a boxable kind", t.kind, t.id))
}

// Descriptor is the serializable part of a Boxed. The handles stay with the
// caller; the fingerprint ties the descriptor to the tree it came from.
type Descriptor struct {
	Fingerprint string `json:"fingerprint"`
	Type        TypeID `json:"type"`
	Kind        string `json:"kind"`
	Valid       bool   `json:"valid"`
	Whence      int64  `json:"whence,omitempty"`
	Stride      int64  `json:"stride,omitempty"`
	Length      int64  `json:"length,omitempty"`
	Index       int64  `json:"index,omitempty"`
}

// Descriptor drops the handles of bx.
func (bx Boxed) Descriptor() Descriptor {
	d := Descriptor{Type: bx.Type, Valid: bx.Valid, Whence: bx.Whence, Stride: bx.Stride, Length: bx.Length, Index: bx.Index}
	if bx.Tree != nil {
		d.Fingerprint = bx.Tree.Fingerprint()
		if t := bx.Tree.Type(bx.Type); t != nil {
			d.Kind = t.kind.String()
		}
	}
	return d
}

// Encode renders the descriptor as JSON.
func (d Descriptor) Encode() ([]byte, error) { return json.Marshal(d) }

// DecodeDescriptor parses a descriptor produced by Encode.
func DecodeDescriptor(b []byte) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(b, &d); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// UnboxDescriptor reattaches handles to a descriptor and unboxes it. The
// descriptor must come from a tree with the same fingerprint.
func UnboxDescriptor(tree *Tree, arrays Arrays, cache Cache, d Descriptor) (any, error) {
	if fp := tree.Fingerprint(); d.Fingerprint != fp {
		return nil, newIssue("", CodeBackendInvariant, fmt.Sprintf("descriptor fingerprint %.12s does not match tree %.12s", d.Fingerprint, fp))
	}
	return Unbox(Boxed{
		Tree: tree, Type: d.Type, Arrays: arrays, Cache: cache,
		Valid: d.Valid, Whence: d.Whence, Stride: d.Stride, Length: d.Length, Index: d.Index,
	})
}
