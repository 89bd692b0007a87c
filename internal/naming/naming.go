// Package naming derives default backing-array names from a path prefix.
//
// A node at prefix p names its own arrays p+delim+tag and hands p+delim+child
// to its members, so two distinct positions in a tree never share a name while
// two pointers to the same node share the target's names.
package naming

import (
	"regexp"
	"strconv"
)

// Array tags.
const (
	TagStarts  = "B"
	TagStops   = "E"
	TagMask    = "M"
	TagTags    = "G"
	TagOffsets = "O"
	TagIndexes = "I"
)

// Child prefixes.
const (
	ChildListContent = "L"
	ChildPossibility = "U"
	ChildField       = "F"
	ChildTupleItem   = "T"
	ChildTarget      = "P"
)

// Defaults used when the caller does not supply a prefix or delimiter.
const (
	DefaultPrefix    = "object"
	DefaultDelimiter = "-"
)

// Path is an immutable prefix plus the delimiter used to extend it.
type Path struct {
	Prefix    string
	Delimiter string
}

// Root returns the starting path, applying defaults for empty parts.
func Root(prefix, delimiter string) Path {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return Path{Prefix: prefix, Delimiter: delimiter}
}

// Array returns the name of the array tagged tag at this path.
func (p Path) Array(tag string) string { return p.Prefix + p.Delimiter + tag }

// Or returns explicit when it is set and the derived name otherwise.
func (p Path) Or(explicit, tag string) string {
	if explicit != "" {
		return explicit
	}
	return p.Array(tag)
}

// Data is the data array of a primitive: the prefix itself.
func (p Path) Data(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return p.Prefix
}

func (p Path) child(s string) Path {
	return Path{Prefix: p.Prefix + p.Delimiter + s, Delimiter: p.Delimiter}
}

// Content is the path of a list's content.
func (p Path) Content() Path { return p.child(ChildListContent) }

// Possibility is the path of the i-th union possibility.
func (p Path) Possibility(i int) Path { return p.child(ChildPossibility + strconv.Itoa(i)) }

// Field is the path of a record field.
func (p Path) Field(name string) Path { return p.child(ChildField + name) }

// Item is the path of the i-th tuple item.
func (p Path) Item(i int) Path { return p.child(ChildTupleItem + strconv.Itoa(i)) }

// Target is the path of a freshly compiled pointer target.
func (p Path) Target() Path { return p.child(ChildTarget) }

var identifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z_0-9]*$`)

// IsIdentifier reports whether s is usable as a record field name.
func IsIdentifier(s string) bool { return identifier.MatchString(s) }

var notIdentChar = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// Sanitize turns an arbitrary key into an identifier: characters outside
// [a-zA-Z0-9_] are dropped and a leading digit (or an empty result) gets an
// underscore prefix.
func Sanitize(key string) string {
	s := notIdentChar.ReplaceAllString(key, "")
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		s = "_" + s
	}
	return s
}
