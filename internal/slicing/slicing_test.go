package slicing

import (
	"errors"
	"testing"
)

func p(v int64) *int64 { return &v }

// selected expands normalized bounds into the indexes they select.
func selected(t *testing.T, start, stop, step *int64, n int64) []int64 {
	t.Helper()
	lo, hi, st, err := Indices(start, stop, step, n)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	k := Length(lo, hi, st)
	out := make([]int64, 0, k)
	for i := int64(0); i < k; i++ {
		out = append(out, lo+i*st)
	}
	return out
}

func equal(a, b []int64) bool {
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

func TestIndices_MatchesSequenceSlicing(t *testing.T) {
	cases := []struct {
		name              string
		start, stop, step *int64
		n                 int64
		want              []int64
	}{
		{"full", nil, nil, nil, 4, []int64{0, 1, 2, 3}},
		{"2:8:2", p(2), p(8), p(2), 10, []int64{2, 4, 6}},
		{"negative start", p(-2), nil, nil, 5, []int64{3, 4}},
		{"clamped stop", p(1), p(100), nil, 3, []int64{1, 2}},
		{"clamped negative start", p(-100), p(2), nil, 3, []int64{0, 1}},
		{"reverse", nil, nil, p(-1), 4, []int64{3, 2, 1, 0}},
		{"reverse stepped", p(8), p(1), p(-3), 10, []int64{8, 5, 2}},
		{"reverse clamped", p(100), p(-100), p(-2), 5, []int64{4, 2, 0}},
		{"empty", p(3), p(1), nil, 5, []int64{}},
		{"empty sequence", nil, nil, nil, 0, []int64{}},
		{"reverse empty sequence", nil, nil, p(-1), 0, []int64{}},
	}
	for _, c := range cases {
		got := selected(t, c.start, c.stop, c.step, c.n)
		if !equal(got, c.want) {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestIndices_ZeroStep(t *testing.T) {
	_, _, _, err := Indices(nil, nil, p(0), 3)
	if !errors.Is(err, ErrZeroStep) {
		t.Fatalf("expected ErrZeroStep, got %v", err)
	}
}
