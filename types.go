package oamap

import "fmt"

// Kind identifies the six node kinds: Primitives, Lists, Unions, Records,
// Tuples and Pointers.
type Kind int

const (
	KindPrimitive Kind = iota
	KindList
	KindUnion
	KindRecord
	KindTuple
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindList:
		return "List"
	case KindUnion:
		return "Union"
	case KindRecord:
		return "Record"
	case KindTuple:
		return "Tuple"
	case KindPointer:
		return "Pointer"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DType is the element type of a backing array. The zero value is invalid so
// that an unset Primitive.DType is reported at compile time.
type DType int

const (
	DTypeInvalid DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

var dtypeNames = [...]string{
	DTypeInvalid: "invalid",
	Bool:         "bool",
	Int8:         "int8",
	Int16:        "int16",
	Int32:        "int32",
	Int64:        "int64",
	Uint8:        "uint8",
	Uint16:       "uint16",
	Uint32:       "uint32",
	Uint64:       "uint64",
	Float32:      "float32",
	Float64:      "float64",
}

func (d DType) String() string {
	if d < 0 || int(d) >= len(dtypeNames) {
		return fmt.Sprintf("DType(%d)", int(d))
	}
	return dtypeNames[d]
}

// Valid reports whether d names a concrete element type.
func (d DType) Valid() bool { return d > DTypeInvalid && int(d) < len(dtypeNames) }

// ItemSize is the width of one element in bytes.
func (d DType) ItemSize() int {
	switch d {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// IsInteger reports whether arrays of this dtype can hold positions, tags or
// mask values.
func (d DType) IsInteger() bool {
	switch d {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsSigned reports whether d is a signed integer type.
func (d DType) IsSigned() bool {
	switch d {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// ParseDType converts a dtype name ("int64", "float32", "bool", ...) into a
// DType. A few common aliases are accepted ("i8", "f8", "double", ...).
func ParseDType(name string) (DType, error) {
	switch name {
	case "bool", "bool_", "?":
		return Bool, nil
	case "int8", "i1", "b":
		return Int8, nil
	case "int16", "i2", "h":
		return Int16, nil
	case "int32", "i4", "i":
		return Int32, nil
	case "int64", "i8", "l", "int":
		return Int64, nil
	case "uint8", "u1", "B":
		return Uint8, nil
	case "uint16", "u2", "H":
		return Uint16, nil
	case "uint32", "u4", "I":
		return Uint32, nil
	case "uint64", "u8", "L":
		return Uint64, nil
	case "float32", "f4", "f":
		return Float32, nil
	case "float64", "f8", "d", "double", "float":
		return Float64, nil
	}
	return DTypeInvalid, newIssue("", CodeInvalidDType, fmt.Sprintf("%q is not a dtype", name), "dtype", name)
}

// MarshalText renders the dtype name.
func (d DType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, newIssue("", CodeInvalidDType, d.String())
	}
	return []byte(d.String()), nil
}

// UnmarshalText parses a dtype name.
func (d *DType) UnmarshalText(b []byte) error {
	v, err := ParseDType(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MaskedValue is the mask sentinel: a mask entry equal to it marks the
// position as absent. Any other entry is the remapped position (or, for
// nullable pointers, the target index).
const MaskedValue int64 = -1

// DefaultMaskDType is the element type of generated mask arrays.
const DefaultMaskDType = Int32
