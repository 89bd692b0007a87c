package capability

import (
	"fmt"

	"github.com/reoring/oamap"
	"github.com/reoring/oamap/i18n"
)

// The helpers below are what rewritten code calls in place of view access.
// They read the arrays bound to required symbols directly.

// ListGet returns the content position of element index (negative counts from
// the end) of the list at outer.
func ListGet(starts, stops oamap.Array, outer, index int64) (int64, error) {
	start, stop, err := bounds(starts, stops, outer)
	if err != nil {
		return 0, err
	}
	size := stop - start
	if index < 0 {
		index += size
	}
	if index < 0 || index >= size {
		return 0, outOfRange(fmt.Sprintf("list index %d for length %d", index, size))
	}
	return start + index, nil
}

// ListSize is the length of the list at index.
func ListSize(starts, stops oamap.Array, index int64) (int64, error) {
	start, stop, err := bounds(starts, stops, index)
	if err != nil {
		return 0, err
	}
	return stop - start, nil
}

// MaybeListSize is ListSize for a nullable list. ok is false when the list at
// index is absent.
func MaybeListSize(mask, starts, stops oamap.Array, index int64) (size int64, ok bool, err error) {
	if err := check(mask, index); err != nil {
		return 0, false, err
	}
	if !mask.DType().IsSigned() {
		return 0, false, oamap.Issues{{Code: oamap.CodeDTypeMismatch, Message: i18n.T(oamap.CodeDTypeMismatch, nil) + ": unsigned mask " + mask.DType().String()}}
	}
	m := mask.Int(index)
	if m == oamap.MaskedValue {
		return 0, false, nil
	}
	size, err = ListSize(starts, stops, m)
	if err != nil {
		return 0, false, err
	}
	return size, true, nil
}

// NonNegotiable unwraps an optional position where a value is required. An
// absent value is an absent_value type error.
func NonNegotiable(index int64, ok bool) (int64, error) {
	if !ok {
		return 0, oamap.Issues{{Code: oamap.CodeAbsentValue, Message: i18n.T(oamap.CodeAbsentValue, nil)}}
	}
	return index, nil
}

func bounds(starts, stops oamap.Array, at int64) (int64, int64, error) {
	if err := check(starts, at); err != nil {
		return 0, 0, err
	}
	if err := check(stops, at); err != nil {
		return 0, 0, err
	}
	start, stop := starts.Int(at), stops.Int(at)
	if stop < start {
		return 0, 0, outOfRange(fmt.Sprintf("stop %d before start %d at %d", stop, start, at))
	}
	return start, stop, nil
}

func check(a oamap.Array, at int64) error {
	if a == nil {
		return oamap.Issues{{Code: oamap.CodeMissingArray, Message: i18n.T(oamap.CodeMissingArray, nil)}}
	}
	if !a.DType().IsInteger() {
		return oamap.Issues{{Code: oamap.CodeDTypeMismatch, Message: i18n.T(oamap.CodeDTypeMismatch, nil) + ": " + a.DType().String()}}
	}
	if at < 0 || at >= a.Len() {
		return outOfRange(fmt.Sprintf("position %d for length %d", at, a.Len()))
	}
	return nil
}

func outOfRange(detail string) error {
	return oamap.Issues{{Code: oamap.CodeOutOfRange, Message: i18n.T(oamap.CodeOutOfRange, nil) + ": " + detail}}
}
