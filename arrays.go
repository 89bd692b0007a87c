package oamap

import "sync"

// Array is a read-only sequence of fixed-width elements. Callers bounds-check
// before reading; implementations may panic on out-of-range indexes.
type Array interface {
	Len() int64
	DType() DType
	// Int reads element i converted to int64 (positions, tags, masks).
	Int(i int64) int64
	// Float reads element i converted to float64.
	Float(i int64) float64
	// Value reads element i as its native Go scalar (int32 for Int32, ...).
	Value(i int64) any
}

// Arrays supplies arrays by name. The engine never mutates what it returns.
type Arrays interface {
	Array(name string) (Array, error)
}

// Scalar is the set of Go element types backing in-memory arrays.
type Scalar interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Values adapts a Go slice to Array without copying.
type Values[T Scalar] []T

func (s Values[T]) Len() int64 { return int64(len(s)) }

func (s Values[T]) DType() DType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return DTypeInvalid
}

func (s Values[T]) Int(i int64) int64 {
	switch v := any(s[i]).(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func (s Values[T]) Float(i int64) float64 {
	switch v := any(s[i]).(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case float32:
		return float64(v)
	case float64:
		return v
	}
	return float64(s.Int(i))
}

func (s Values[T]) Value(i int64) any { return any(s[i]) }

// MapArrays is an in-memory Arrays keyed by name.
type MapArrays map[string]Array

func (m MapArrays) Array(name string) (Array, error) {
	a, ok := m[name]
	if !ok || a == nil {
		return nil, newIssue("", CodeMissingArray, name, "array", name)
	}
	return a, nil
}

// ArraysFunc adapts a function to Arrays.
type ArraysFunc func(name string) (Array, error)

func (f ArraysFunc) Array(name string) (Array, error) { return f(name) }

// Cache is the shared side-table backends use to memoize derived values. The
// engine uses it to remember arrays already fetched from an Arrays provider.
// Implementations used from several goroutines must be safe for concurrent
// use; NewCache is.
type Cache interface {
	Load(name string) (Array, bool)
	Store(name string, a Array)
}

// NewCache returns a concurrency-safe Cache.
func NewCache() Cache { return &syncCache{} }

type syncCache struct{ m sync.Map }

func (c *syncCache) Load(name string) (Array, bool) {
	v, ok := c.m.Load(name)
	if !ok {
		return nil, false
	}
	return v.(Array), true
}

func (c *syncCache) Store(name string, a Array) { c.m.Store(name, a) }
