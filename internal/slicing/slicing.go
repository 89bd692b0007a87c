// Package slicing implements sequence slice normalization on int64 bounds.
package slicing

import "errors"

// ErrZeroStep is returned for a slice whose step is zero.
var ErrZeroStep = errors.New("slice step cannot be zero")

// Indices normalizes optional start, stop and step against a sequence of the
// given length: negative bounds wrap once, out-of-range bounds clamp, and
// omitted bounds default according to the sign of step.
func Indices(start, stop, step *int64, length int64) (lo, hi, st int64, err error) {
	st = 1
	if step != nil {
		st = *step
	}
	if st == 0 {
		return 0, 0, 0, ErrZeroStep
	}

	lower, upper := int64(0), length
	if st < 0 {
		lower, upper = -1, length-1
	}

	clamp := func(v *int64, dflt int64) int64 {
		if v == nil {
			return dflt
		}
		x := *v
		if x < 0 {
			x += length
			if x < lower {
				x = lower
			}
		} else if x > upper {
			x = upper
		}
		return x
	}

	if st < 0 {
		lo = clamp(start, upper)
		hi = clamp(stop, lower)
	} else {
		lo = clamp(start, lower)
		hi = clamp(stop, upper)
	}
	return lo, hi, st, nil
}

// Length is the number of elements selected by normalized bounds.
func Length(lo, hi, step int64) int64 {
	if step < 0 {
		if hi < lo {
			return (lo-hi-1)/(-step) + 1
		}
		return 0
	}
	if lo < hi {
		return (hi-lo-1)/step + 1
	}
	return 0
}
