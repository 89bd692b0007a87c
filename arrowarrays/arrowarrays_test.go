package arrowarrays_test

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/reoring/oamap"
	"github.com/reoring/oamap/arrowarrays"
)

func TestWrap_NumericColumnsShareBuffers(t *testing.T) {
	alloc := memory.NewGoAllocator()
	builder := array.NewInt64Builder(alloc)
	defer builder.Release()
	builder.AppendValues([]int64{100, 200, 300}, nil)
	arr := builder.NewInt64Array()
	defer arr.Release()

	w, err := arrowarrays.Wrap(arr)
	require.NoError(t, err)
	require.Equal(t, int64(3), w.Len())
	require.Equal(t, oamap.Int64, w.DType())
	require.Equal(t, int64(200), w.Value(1))
	require.Equal(t, float64(300), w.Float(2))

	// same backing memory
	arr.Int64Values()[0] = 7
	require.Equal(t, int64(7), w.Int(0))
}

func TestWrap_BooleanAndUnsupported(t *testing.T) {
	alloc := memory.NewGoAllocator()
	bb := array.NewBooleanBuilder(alloc)
	defer bb.Release()
	bb.AppendValues([]bool{true, false}, nil)
	barr := bb.NewArray()
	defer barr.Release()

	w, err := arrowarrays.Wrap(barr)
	require.NoError(t, err)
	require.Equal(t, oamap.Bool, w.DType())
	require.Equal(t, true, w.Value(0))
	require.Equal(t, int64(0), w.Int(1))

	sb := array.NewStringBuilder(alloc)
	defer sb.Release()
	sb.Append("x")
	sarr := sb.NewArray()
	defer sarr.Release()

	_, err = arrowarrays.Wrap(sarr)
	require.True(t, errors.Is(err, oamap.ErrNotImplemented), "got %v", err)

	dt, ok := arrowarrays.DType(arrow.PrimitiveTypes.Uint16)
	require.True(t, ok)
	require.Equal(t, oamap.Uint16, dt)
	_, ok = arrowarrays.DType(arrow.BinaryTypes.String)
	require.False(t, ok)
}

func TestFromRecord_ListColumnResolves(t *testing.T) {
	alloc := memory.NewGoAllocator()

	lb := array.NewListBuilder(alloc, arrow.PrimitiveTypes.Float64)
	defer lb.Release()
	vb := lb.ValueBuilder().(*array.Float64Builder)
	lb.Append(true)
	vb.AppendValues([]float64{1.1, 2.2, 3.3}, nil)
	lb.Append(true)
	lb.Append(true)
	vb.Append(4.4)
	xs := lb.NewArray()
	defer xs.Release()

	ib := array.NewInt32Builder(alloc)
	defer ib.Release()
	ib.AppendValues([]int32{10, 20, 30}, nil)
	ids := ib.NewArray()
	defer ids.Release()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "xs", Type: arrow.ListOf(arrow.PrimitiveTypes.Float64)},
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
	}, nil)
	rec := array.NewRecord(schema, []arrow.Array{xs, ids}, 3)
	defer rec.Release()

	arrays := arrowarrays.FromRecord(rec)
	defer arrays.Release()

	tree, err := oamap.Compile(&oamap.List{Content: &oamap.Primitive{DType: oamap.Float64}}, oamap.CompileOptions{Prefix: "xs"})
	require.NoError(t, err)
	bag := oamap.Bind(tree, arrays, nil)

	lens := []int64{3, 0, 1}
	for row, want := range lens {
		v, err := bag.Get(int64(row))
		require.NoError(t, err)
		require.Equal(t, want, v.(oamap.ListView).Len(), "row %d", row)
	}
	v, err := bag.Get(2)
	require.NoError(t, err)
	x, err := v.(oamap.ListView).Get(0)
	require.NoError(t, err)
	require.Equal(t, 4.4, x)

	id, err := oamap.Resolve(mustCompile(t, &oamap.Primitive{DType: oamap.Int32, Data: "id"}).Root(), arrays, 1)
	require.NoError(t, err)
	require.Equal(t, int32(20), id)

	_, err = arrays.Array("missing")
	require.True(t, errors.Is(err, oamap.ErrMissingArray), "got %v", err)
}

func TestValidityMask_NullableColumn(t *testing.T) {
	alloc := memory.NewGoAllocator()
	b := array.NewInt64Builder(alloc)
	defer b.Release()
	b.Append(5)
	b.AppendNull()
	b.Append(9)
	col := b.NewArray()
	defer col.Release()

	mask := arrowarrays.ValidityMask(col)
	require.Equal(t, oamap.Values[int32]{0, -1, 2}, mask)

	cols := arrowarrays.New(map[string]arrow.Array{"v": col})
	defer cols.Release()
	arrays := oamap.ArraysFunc(func(name string) (oamap.Array, error) {
		if name == "v-mask" {
			return mask, nil
		}
		return cols.Array(name)
	})

	tree := mustCompile(t, &oamap.Primitive{DType: oamap.Int64, Nullable: true, Data: "v", Mask: "v-mask"})
	bag := oamap.Bind(tree, arrays, nil)
	got := make([]any, 3)
	for i := range got {
		v, err := bag.Get(int64(i))
		require.NoError(t, err)
		got[i] = v
	}
	require.Equal(t, []any{int64(5), nil, int64(9)}, got)
}

func mustCompile(t *testing.T, s oamap.Schema) *oamap.Tree {
	t.Helper()
	tree, err := oamap.Compile(s)
	require.NoError(t, err)
	return tree
}
