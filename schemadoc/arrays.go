package schemadoc

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/oamap"
)

// ArrayDoc is one array of a fixture document.
type ArrayDoc struct {
	DType  string `json:"dtype" yaml:"dtype"`
	Values []any  `json:"values" yaml:"values,flow"`
}

// DecodeArraysJSON parses a fixture document mapping array names to
// {"dtype": ..., "values": [...]}.
func DecodeArraysJSON(data []byte) (oamap.MapArrays, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var docs map[string]ArrayDoc
	if err := dec.Decode(&docs); err != nil {
		return nil, err
	}
	return buildArrays(docs)
}

// DecodeArraysYAML is DecodeArraysJSON for YAML fixtures.
func DecodeArraysYAML(data []byte) (oamap.MapArrays, error) {
	var docs map[string]ArrayDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return buildArrays(docs)
}

// ReadArrays loads a fixture file, YAML or JSON by extension.
func ReadArrays(path string) (oamap.MapArrays, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAML(path) {
		return DecodeArraysYAML(data)
	}
	return DecodeArraysJSON(data)
}

func buildArrays(docs map[string]ArrayDoc) (oamap.MapArrays, error) {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(oamap.MapArrays, len(docs))
	var iss oamap.Issues
	for _, name := range names {
		a, err := ToArray(docs[name])
		if err != nil {
			iss = oamap.AppendIssues(iss, oamap.Issue{Path: "/" + name, Code: oamap.CodeInvalidDType, Message: err.Error(), Cause: err})
			continue
		}
		out[name] = a
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// ToArray converts decoded values into a typed in-memory array.
func ToArray(d ArrayDoc) (oamap.Array, error) {
	dt, err := oamap.ParseDType(d.DType)
	if err != nil {
		return nil, err
	}
	switch dt {
	case oamap.Bool:
		out := make(oamap.Values[bool], len(d.Values))
		for i, v := range d.Values {
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("values[%d]: %v is not a bool", i, v)
			}
			out[i] = b
		}
		return out, nil
	case oamap.Int8:
		return ints[int8](d.Values, math.MinInt8, math.MaxInt8)
	case oamap.Int16:
		return ints[int16](d.Values, math.MinInt16, math.MaxInt16)
	case oamap.Int32:
		return ints[int32](d.Values, math.MinInt32, math.MaxInt32)
	case oamap.Int64:
		return ints[int64](d.Values, math.MinInt64, math.MaxInt64)
	case oamap.Uint8:
		return ints[uint8](d.Values, 0, math.MaxUint8)
	case oamap.Uint16:
		return ints[uint16](d.Values, 0, math.MaxUint16)
	case oamap.Uint32:
		return ints[uint32](d.Values, 0, math.MaxUint32)
	case oamap.Uint64:
		// values above MaxInt64 are not representable in fixtures
		return ints[uint64](d.Values, 0, math.MaxInt64)
	case oamap.Float32:
		return floats[float32](d.Values)
	case oamap.Float64:
		return floats[float64](d.Values)
	}
	return nil, fmt.Errorf("unsupported dtype %s", dt)
}

func ints[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64](vals []any, lo, hi int64) (oamap.Values[T], error) {
	out := make(oamap.Values[T], len(vals))
	for i, v := range vals {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		if n < lo || n > hi {
			return nil, fmt.Errorf("values[%d]: %d overflows", i, n)
		}
		out[i] = T(n)
	}
	return out, nil
}

func floats[T float32 | float64](vals []any) (oamap.Values[T], error) {
	out := make(oamap.Values[T], len(vals))
	for i, v := range vals {
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		out[i] = T(f)
	}
	return out, nil
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Int64()
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	}
	return 0, fmt.Errorf("%v is not an integer", v)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Float64()
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		// JSON has no literal for NaN or Inf
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("%v is not a number", v)
}
