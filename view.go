package oamap

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/reoring/oamap/internal/slicing"
)

// ListView addresses length elements of a list's content starting at whence,
// stride positions apart. It copies nothing; the zero value is an empty list.
type ListView struct {
	bag    *Baggage
	typ    *Type
	whence int64
	stride int64
	length int64
}

func (v ListView) Len() int64    { return v.length }
func (v ListView) Whence() int64 { return v.whence }
func (v ListView) Stride() int64 { return v.stride }

// Type is the list type the view was resolved from.
func (v ListView) Type() *Type { return v.typ }

// Position maps a logical index (negative counts from the end) to the
// backing position of the content type.
func (v ListView) Position(i int64) (int64, error) {
	n := i
	if n < 0 {
		n += v.length
	}
	if n < 0 || n >= v.length {
		return 0, newIssue("/"+strconv.FormatInt(i, 10), CodeOutOfRange,
			fmt.Sprintf("list index %d for length %d", i, v.length), "index", i, "len", v.length)
	}
	return v.whence + v.stride*n, nil
}

// Get resolves the element at logical index i.
func (v ListView) Get(i int64) (any, error) {
	at, err := v.Position(i)
	if err != nil {
		return nil, err
	}
	return v.bag.resolve(v.typ.Content(), at)
}

// Slice selects a sub-sequence with sequence slicing rules. Nil bounds take
// their defaults.
type Slice struct {
	Start, Stop, Step *int64
}

// Bound returns a pointer to v for use in Slice literals.
func Bound(v int64) *int64 { return &v }

// Slice returns a view over the selected elements, sharing the same arrays.
func (v ListView) Slice(s Slice) (ListView, error) {
	lo, hi, step, err := slicing.Indices(s.Start, s.Stop, s.Step, v.length)
	if err != nil {
		iss := newIssue("", CodeOutOfRange, err.Error())
		iss[0].Cause = err
		return ListView{}, iss
	}
	return ListView{
		bag:    v.bag,
		typ:    v.typ,
		whence: v.whence + v.stride*lo,
		stride: v.stride * step,
		length: slicing.Length(lo, hi, step),
	}, nil
}

// All iterates the elements in order. Iteration stops after the first error,
// which is yielded with a nil value. The sequence can be ranged over again.
func (v ListView) All() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for i := int64(0); i < v.length; i++ {
			x, err := v.bag.resolve(v.typ.Content(), v.whence+v.stride*i)
			if !yield(x, err) || err != nil {
				return
			}
		}
	}
}

// RecordView addresses one record; each field resolves at the same index.
type RecordView struct {
	bag   *Baggage
	typ   *Type
	index int64
}

func (v RecordView) Index() int64 { return v.index }
func (v RecordView) Type() *Type  { return v.typ }

// Fields lists field names in declaration order.
func (v RecordView) Fields() []string {
	if v.typ == nil {
		return nil
	}
	out := make([]string, len(v.typ.fields))
	for i, f := range v.typ.fields {
		out[i] = f.name
	}
	return out
}

// Field resolves the named field.
func (v RecordView) Field(name string) (any, error) {
	var ft *Type
	if v.typ != nil {
		ft, _ = v.typ.Field(name)
	}
	if ft == nil {
		owner := "Record"
		if v.typ != nil && v.typ.name != "" {
			owner = v.typ.name
		}
		return nil, newIssue("/"+name, CodeMissingAttribute,
			fmt.Sprintf("%q object has no attribute %q", owner, name), "field", name)
	}
	if v.bag == nil {
		return Empty(ft), nil
	}
	return v.bag.resolve(ft, v.index)
}

// TupleView addresses one tuple; each item resolves at the same index.
type TupleView struct {
	bag   *Baggage
	typ   *Type
	index int64
}

func (v TupleView) Index() int64 { return v.index }
func (v TupleView) Type() *Type  { return v.typ }

func (v TupleView) Len() int64 {
	if v.typ == nil {
		return 0
	}
	return int64(len(v.typ.types))
}

// Get resolves the item at position i (negative counts from the end).
func (v TupleView) Get(i int64) (any, error) {
	n, size := i, v.Len()
	if n < 0 {
		n += size
	}
	if n < 0 || n >= size {
		return nil, newIssue("/"+strconv.FormatInt(i, 10), CodeOutOfRange,
			fmt.Sprintf("tuple index %d for length %d", i, size), "index", i, "len", size)
	}
	it := v.typ.tree.nodes[v.typ.types[n]]
	if v.bag == nil {
		return Empty(it), nil
	}
	return v.bag.resolve(it, v.index)
}

// Block is a primitive with fixed dims: prod(dims) consecutive elements of the
// data array, read lazily in row-major order.
type Block struct {
	bag    *Baggage
	data   Array
	typ    *Type
	offset int64
}

func (b Block) Len() int64 {
	if b.typ == nil {
		return 0
	}
	return b.typ.BlockSize()
}

func (b Block) Dims() []int {
	if b.typ == nil {
		return nil
	}
	return b.typ.Dims()
}

// Flat reads the i-th element in row-major order.
func (b Block) Flat(i int64) (any, error) {
	if i < 0 || i >= b.Len() {
		return nil, newIssue("", CodeOutOfRange, fmt.Sprintf("block element %d for size %d", i, b.Len()))
	}
	if b.data == nil {
		return zeroOf(b.typ.dtype), nil
	}
	at := b.offset + i
	if err := checkBounds(b.typ.data.Name, b.data, at); err != nil {
		return nil, err
	}
	return b.data.Value(at), nil
}

// At reads the element at a full multi-dimensional index.
func (b Block) At(idx ...int64) (any, error) {
	dims := b.Dims()
	if len(idx) != len(dims) {
		return nil, newIssue("", CodeOutOfRange, fmt.Sprintf("block needs %d indexes, got %d", len(dims), len(idx)))
	}
	var flat int64
	for k, i := range idx {
		if i < 0 || i >= int64(dims[k]) {
			return nil, newIssue("", CodeOutOfRange, fmt.Sprintf("index %d for dimension %d of size %d", i, k, dims[k]))
		}
		flat = flat*int64(dims[k]) + i
	}
	return b.Flat(flat)
}

// Empty is the default value standing in for an absent t at the native
// boundary: a zero scalar, an empty list, or a record/tuple view that reads
// nothing. Unions have no single default and yield nil.
func Empty(t *Type) any {
	if t == nil {
		return nil
	}
	switch t.kind {
	case KindPrimitive:
		if len(t.dims) > 0 {
			return Block{typ: t}
		}
		return zeroOf(t.dtype)
	case KindList:
		return ListView{typ: t}
	case KindRecord:
		return RecordView{typ: t}
	case KindTuple:
		return TupleView{typ: t}
	case KindPointer:
		return Empty(t.tree.nodes[t.target])
	}
	return nil
}

func zeroOf(d DType) any {
	switch d {
	case Bool:
		return false
	case Int8:
		return int8(0)
	case Int16:
		return int16(0)
	case Int32:
		return int32(0)
	case Int64:
		return int64(0)
	case Uint8:
		return uint8(0)
	case Uint16:
		return uint16(0)
	case Uint32:
		return uint32(0)
	case Uint64:
		return uint64(0)
	case Float32:
		return float32(0)
	case Float64:
		return float64(0)
	}
	return nil
}
