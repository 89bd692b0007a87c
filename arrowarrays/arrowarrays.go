// Package arrowarrays serves oamap arrays from Apache Arrow columns without
// copying their value buffers.
//
// Arrow validity bitmaps are not consulted by the resolver; oamap expresses
// absence through explicit mask arrays. ValidityMask derives such a mask from
// a column's bitmap when a schema marks the column nullable.
package arrowarrays

import (
	"fmt"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/reoring/oamap"
	"github.com/reoring/oamap/i18n"
)

// Wrap exposes a fixed-width Arrow array as an oamap.Array. Numeric columns
// share the Arrow value buffer; boolean columns read through the bitmap. Other
// Arrow types are not implemented.
func Wrap(arr arrow.Array) (oamap.Array, error) {
	switch a := arr.(type) {
	case *array.Boolean:
		return boolColumn{a}, nil
	case *array.Int8:
		return oamap.Values[int8](a.Int8Values()), nil
	case *array.Int16:
		return oamap.Values[int16](a.Int16Values()), nil
	case *array.Int32:
		return oamap.Values[int32](a.Int32Values()), nil
	case *array.Int64:
		return oamap.Values[int64](a.Int64Values()), nil
	case *array.Uint8:
		return oamap.Values[uint8](a.Uint8Values()), nil
	case *array.Uint16:
		return oamap.Values[uint16](a.Uint16Values()), nil
	case *array.Uint32:
		return oamap.Values[uint32](a.Uint32Values()), nil
	case *array.Uint64:
		return oamap.Values[uint64](a.Uint64Values()), nil
	case *array.Float32:
		return oamap.Values[float32](a.Float32Values()), nil
	case *array.Float64:
		return oamap.Values[float64](a.Float64Values()), nil
	}
	return nil, oamap.Issues{{
		Code:    oamap.CodeNotImplemented,
		Message: i18n.T(oamap.CodeNotImplemented, nil) + ": " + fmt.Sprintf("arrow type %s has no oamap dtype", arr.DataType()),
		Params:  map[string]any{"arrowType": arr.DataType().String()},
	}}
}

type boolColumn struct{ a *array.Boolean }

func (c boolColumn) Len() int64         { return int64(c.a.Len()) }
func (c boolColumn) DType() oamap.DType { return oamap.Bool }
func (c boolColumn) Value(i int64) any  { return c.a.Value(int(i)) }

func (c boolColumn) Int(i int64) int64 {
	if c.a.Value(int(i)) {
		return 1
	}
	return 0
}

func (c boolColumn) Float(i int64) float64 { return float64(c.Int(i)) }

// DType maps an Arrow type to the oamap dtype Wrap produces for it.
func DType(t arrow.DataType) (oamap.DType, bool) {
	switch t.ID() {
	case arrow.BOOL:
		return oamap.Bool, true
	case arrow.INT8:
		return oamap.Int8, true
	case arrow.INT16:
		return oamap.Int16, true
	case arrow.INT32:
		return oamap.Int32, true
	case arrow.INT64:
		return oamap.Int64, true
	case arrow.UINT8:
		return oamap.Uint8, true
	case arrow.UINT16:
		return oamap.Uint16, true
	case arrow.UINT32:
		return oamap.Uint32, true
	case arrow.UINT64:
		return oamap.Uint64, true
	case arrow.FLOAT32:
		return oamap.Float32, true
	case arrow.FLOAT64:
		return oamap.Float64, true
	}
	return oamap.DTypeInvalid, false
}

// ListBounds exposes the offsets of an Arrow list column as the starts and
// stops arrays of an oamap List. Positions index the list's child values.
func ListBounds(l *array.List) (starts, stops oamap.Array) {
	off := l.Offsets()
	if len(off) == 0 {
		return oamap.Values[int32]{}, oamap.Values[int32]{}
	}
	return oamap.Values[int32](off[:len(off)-1]), oamap.Values[int32](off[1:])
}

// ValidityMask builds a mask array from a column's validity bitmap: the
// position itself where a value is present, -1 where it is null.
func ValidityMask(arr arrow.Array) oamap.Values[int32] {
	out := make(oamap.Values[int32], arr.Len())
	for i := range out {
		if arr.IsNull(i) {
			out[i] = int32(oamap.MaskedValue)
		} else {
			out[i] = int32(i)
		}
	}
	return out
}

// Arrays is an oamap.Arrays over named Arrow columns. It holds a reference to
// every column until Release.
type Arrays struct {
	mu      sync.Mutex
	cols    map[string]arrow.Array
	wrapped map[string]oamap.Array
}

// New serves the given columns by name, retaining each.
func New(cols map[string]arrow.Array) *Arrays {
	a := &Arrays{cols: make(map[string]arrow.Array, len(cols)), wrapped: make(map[string]oamap.Array)}
	for name, c := range cols {
		c.Retain()
		a.cols[name] = c
	}
	return a
}

// FromRecord serves the columns of rec under their field names. A list column
// "c" additionally provides "c-B" and "c-E" (its bounds) and "c-L" (its
// values), matching the default names of a List compiled with prefix "c".
func FromRecord(rec arrow.Record) *Arrays {
	cols := make(map[string]arrow.Array, rec.NumCols())
	for i, f := range rec.Schema().Fields() {
		cols[f.Name] = rec.Column(i)
	}
	a := New(cols)
	for i, f := range rec.Schema().Fields() {
		if l, ok := rec.Column(i).(*array.List); ok {
			starts, stops := ListBounds(l)
			a.wrapped[f.Name+"-B"] = starts
			a.wrapped[f.Name+"-E"] = stops
			v := l.ListValues()
			v.Retain()
			a.cols[f.Name+"-L"] = v
		}
	}
	return a
}

// Array implements oamap.Arrays.
func (a *Arrays) Array(name string) (oamap.Array, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if w, ok := a.wrapped[name]; ok {
		return w, nil
	}
	c, ok := a.cols[name]
	if !ok {
		return nil, oamap.Issues{{
			Code:    oamap.CodeMissingArray,
			Message: i18n.T(oamap.CodeMissingArray, nil) + ": " + name,
			Params:  map[string]any{"array": name},
		}}
	}
	w, err := Wrap(c)
	if err != nil {
		return nil, err
	}
	a.wrapped[name] = w
	return w, nil
}

// Release drops the references taken by New or FromRecord.
func (a *Arrays) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.cols {
		c.Release()
	}
	a.cols = nil
	a.wrapped = nil
}
