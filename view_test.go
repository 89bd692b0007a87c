package oamap_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/reoring/oamap"
)

func rangeList(t *testing.T, n int64) oamap.ListView {
	t.Helper()
	tree := mustCompile(t, &oamap.List{Content: &oamap.Primitive{DType: oamap.Int64}})
	content := make(oamap.Values[int64], n)
	for i := range content {
		content[i] = int64(i)
	}
	v, err := oamap.Bind(tree, oamap.MapArrays{
		"object-B": oamap.Values[int64]{0},
		"object-E": oamap.Values[int64]{n},
		"object-L": content,
	}, nil).Get(0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return v.(oamap.ListView)
}

func collect(t *testing.T, l oamap.ListView) []int64 {
	t.Helper()
	var out []int64
	for x, err := range l.All() {
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		out = append(out, x.(int64))
	}
	return out
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListView_Slice(t *testing.T) {
	l := rangeList(t, 10)

	cases := []struct {
		name string
		s    oamap.Slice
		want []int64
	}{
		{"step two", oamap.Slice{Start: oamap.Bound(2), Stop: oamap.Bound(8), Step: oamap.Bound(2)}, []int64{2, 4, 6}},
		{"negative start", oamap.Slice{Start: oamap.Bound(-3)}, []int64{7, 8, 9}},
		{"reverse", oamap.Slice{Step: oamap.Bound(-3)}, []int64{9, 6, 3, 0}},
		{"clamped", oamap.Slice{Start: oamap.Bound(-100), Stop: oamap.Bound(2)}, []int64{0, 1}},
		{"empty", oamap.Slice{Start: oamap.Bound(5), Stop: oamap.Bound(5)}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := l.Slice(c.s)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got := collect(t, s); !equalInts(got, c.want) {
				t.Fatalf("got %v, want %v", got, c.want)
			}
			if s.Len() != int64(len(c.want)) {
				t.Fatalf("len = %d, want %d", s.Len(), len(c.want))
			}
		})
	}
}

func TestListView_SliceComposes(t *testing.T) {
	l := rangeList(t, 10)
	evens, err := l.Slice(oamap.Slice{Start: oamap.Bound(2), Stop: oamap.Bound(8), Step: oamap.Bound(2)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	back, err := evens.Slice(oamap.Slice{Step: oamap.Bound(-1)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := collect(t, back); !equalInts(got, []int64{6, 4, 2}) {
		t.Fatalf("got %v, want [6 4 2]", got)
	}
	if back.Whence() != 6 || back.Stride() != -2 {
		t.Fatalf("whence/stride = %d/%d", back.Whence(), back.Stride())
	}
	if at, err := back.Position(-1); err != nil || at != 2 {
		t.Fatalf("position(-1) = %d, %v", at, err)
	}
	if x := mustGet(t, back, 1); x != int64(4) {
		t.Fatalf("back[1] = %v", x)
	}
}

func TestListView_ZeroStep(t *testing.T) {
	_, err := rangeList(t, 3).Slice(oamap.Slice{Step: oamap.Bound(0)})
	if !errors.Is(err, oamap.ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestListView_AllIsRestartable(t *testing.T) {
	l := rangeList(t, 4)
	first := collect(t, l)
	second := collect(t, l)
	if !equalInts(first, second) || len(first) != 4 {
		t.Fatalf("iterations differ: %v vs %v", first, second)
	}
	var seen int
	for range l.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Fatalf("early break visited %d", seen)
	}
}

func TestListView_AllStopsAtFirstError(t *testing.T) {
	tree := mustCompile(t, &oamap.List{Content: &oamap.Primitive{DType: oamap.Int64}})
	v, err := oamap.Bind(tree, oamap.MapArrays{
		"object-B": oamap.Values[int64]{0},
		"object-E": oamap.Values[int64]{3},
		"object-L": oamap.Values[int64]{1},
	}, nil).Get(0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	var errs, vals int
	for x, err := range v.(oamap.ListView).All() {
		if err != nil {
			errs++
			if x != nil || !errors.Is(err, oamap.ErrOutOfRange) {
				t.Fatalf("unexpected yield %v, %v", x, err)
			}
			continue
		}
		vals++
	}
	if vals != 1 || errs != 1 {
		t.Fatalf("vals=%d errs=%d", vals, errs)
	}
}

func TestRecordView_MissingAttribute(t *testing.T) {
	node := &oamap.Record{Name: "Node"}
	node.Set("label", &oamap.Primitive{DType: oamap.Int64})
	tree := mustCompile(t, node)
	rec, err := oamap.Bind(tree, oamap.MapArrays{"object-Flabel": oamap.Values[int64]{4}}, nil).Get(0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rv := rec.(oamap.RecordView)
	if f := rv.Fields(); len(f) != 1 || f[0] != "label" {
		t.Fatalf("fields = %v", f)
	}
	_, err = rv.Field("lable")
	if !errors.Is(err, oamap.ErrMissingAttribute) {
		t.Fatalf("expected missing attribute, got %v", err)
	}
	if !strings.Contains(err.Error(), `"Node" object has no attribute "lable"`) {
		t.Fatalf("message = %s", err)
	}

	anon := mustCompile(t, &oamap.Record{Fields: []oamap.Field{{Name: "x", Schema: &oamap.Primitive{DType: oamap.Bool}}}})
	r2, _ := oamap.Bind(anon, oamap.MapArrays{}, nil).Get(0)
	if _, err := r2.(oamap.RecordView).Field("y"); err == nil || !strings.Contains(err.Error(), `"Record" object`) {
		t.Fatalf("anonymous records are named Record: %v", err)
	}
}

func TestTupleView_Indexing(t *testing.T) {
	s := &oamap.Tuple{Types: []oamap.Schema{
		&oamap.Primitive{DType: oamap.Int8},
		&oamap.Primitive{DType: oamap.Float32},
		&oamap.Primitive{DType: oamap.Uint32},
	}}
	tree := mustCompile(t, s)
	v, err := oamap.Bind(tree, oamap.MapArrays{
		"object-T0": oamap.Values[int8]{-5},
		"object-T1": oamap.Values[float32]{0.25},
		"object-T2": oamap.Values[uint32]{9},
	}, nil).Get(0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	tup := v.(oamap.TupleView)
	if x := mustGet(t, tup, -1); x != uint32(9) {
		t.Fatalf("tup[-1] = %v", x)
	}
	if x := mustGet(t, tup, 0); x != int8(-5) {
		t.Fatalf("tup[0] = %v", x)
	}
	for _, i := range []int64{3, -4} {
		if _, err := tup.Get(i); !errors.Is(err, oamap.ErrOutOfRange) {
			t.Fatalf("tup[%d]: expected out of range, got %v", i, err)
		}
	}
}

func TestEmpty(t *testing.T) {
	inner := &oamap.Record{Fields: []oamap.Field{
		{Name: "n", Schema: &oamap.Primitive{DType: oamap.Uint16}},
		{Name: "xs", Schema: &oamap.List{Content: &oamap.Primitive{DType: oamap.Float64}}},
		{Name: "m", Schema: &oamap.Primitive{DType: oamap.Int16, Dims: []int{3}}},
	}}
	s := &oamap.Tuple{Types: []oamap.Schema{
		&oamap.Primitive{DType: oamap.Float32},
		&oamap.Pointer{Target: inner},
		&oamap.Union{Possibilities: []oamap.Schema{&oamap.Primitive{DType: oamap.Bool}}},
		&oamap.Primitive{DType: oamap.Int8, Dims: []int{2}},
	}}
	tree := mustCompile(t, s)
	types := tree.Root().Types()

	if v := oamap.Empty(types[0]); v != float32(0) {
		t.Fatalf("primitive default = %v (%T)", v, v)
	}
	rec, ok := oamap.Empty(types[1]).(oamap.RecordView)
	if !ok {
		t.Fatalf("pointer default should be its target's default, got %T", oamap.Empty(types[1]))
	}
	if n, err := rec.Field("n"); err != nil || n != uint16(0) {
		t.Fatalf("n = %v, %v", n, err)
	}
	if xs, err := rec.Field("xs"); err != nil || xs.(oamap.ListView).Len() != 0 {
		t.Fatalf("xs = %v, %v", xs, err)
	}
	m, err := rec.Field("m")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if x, err := m.(oamap.Block).Flat(2); err != nil || x != int16(0) {
		t.Fatalf("m[2] = %v, %v", x, err)
	}
	if v := oamap.Empty(types[2]); v != nil {
		t.Fatalf("union default = %v", v)
	}
	blk, ok := oamap.Empty(types[3]).(oamap.Block)
	if !ok || blk.Len() != 2 {
		t.Fatalf("block default = %v", oamap.Empty(types[3]))
	}
	if x, err := blk.Flat(1); err != nil || x != int8(0) {
		t.Fatalf("empty block element = %v, %v", x, err)
	}
	if x, err := blk.At(0); err != nil || x != int8(0) {
		t.Fatalf("empty block At = %v, %v", x, err)
	}
	if _, err := blk.Flat(2); !errors.Is(err, oamap.ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	tup := oamap.Empty(tree.Root()).(oamap.TupleView)
	if x := mustGet(t, tup, 0); x != float32(0) {
		t.Fatalf("empty tuple item = %v", x)
	}
	if oamap.Empty(nil) != nil {
		t.Fatalf("nil type has no default")
	}
}
