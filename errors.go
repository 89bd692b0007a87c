package oamap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/oamap/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidSchema = "invalid_schema"
	CodeInvalidDType  = "invalid_dtype"
	CodeInvalidName   = "invalid_name"
	CodeSelfReference = "self_reference"
	// Resolution time
	CodeOutOfRange       = "out_of_range"
	CodeMissingAttribute = "missing_attribute"
	CodeMissingArray     = "missing_array"
	CodeDTypeMismatch    = "dtype_mismatch"
	CodeAbsentValue      = "absent_value"
	CodeNotImplemented   = "not_implemented"
	// Consumers of the compiled tree
	CodeCapabilityMisuse = "capability_misuse"
	CodeBackendInvariant = "backend_invariant"
)

// Error kinds. Issues match them with errors.Is through their code.
// ErrConfiguration is raised by Compile and schema documents only; arrays
// that disagree with a compiled tree surface later as ErrType.
var (
	ErrConfiguration    = errors.New("oamap: configuration error")
	ErrOutOfRange       = errors.New("oamap: out of range")
	ErrType             = errors.New("oamap: type error")
	ErrMissingAttribute = errors.New("oamap: missing attribute")
	ErrMissingArray     = errors.New("oamap: missing array")
	ErrNotImplemented   = errors.New("oamap: not implemented")
	ErrCapability       = errors.New("oamap: capability misuse")
	ErrBackendInvariant = errors.New("oamap: backend invariant violated")
)

// KindOf maps an issue code to its error kind. Unknown codes map to nil.
func KindOf(code string) error {
	switch code {
	case CodeInvalidSchema, CodeInvalidDType, CodeInvalidName, CodeSelfReference:
		return ErrConfiguration
	case CodeOutOfRange:
		return ErrOutOfRange
	case CodeDTypeMismatch, CodeAbsentValue:
		return ErrType
	case CodeMissingAttribute:
		return ErrMissingAttribute
	case CodeMissingArray:
		return ErrMissingArray
	case CodeNotImplemented:
		return ErrNotImplemented
	case CodeCapabilityMisuse:
		return ErrCapability
	case CodeBackendInvariant:
		return ErrBackendInvariant
	}
	return nil
}

// Issue represents a single compile or resolution failure.
type Issue struct {
	Path    string // Schema path at compile time (/fields/next/target), logical path at resolution time.
	Code    string // One of the codes listed above.
	Message string
	// Params carries structured parameters (e.g., {"array":"object-B", "at":7, "len":3}).
	Params map[string]any
	Cause  error // Optional: underlying error.
}

func (it Issue) Error() string {
	var b strings.Builder
	b.WriteString(it.Code)
	if it.Path != "" {
		b.WriteString(" at ")
		b.WriteString(it.Path)
	}
	if it.Message != "" && it.Message != it.Code {
		b.WriteString(": ")
		b.WriteString(it.Message)
	}
	return b.String()
}

// Is reports whether target is the error kind of this issue's code.
func (it Issue) Is(target error) bool {
	k := KindOf(it.Code)
	return k != nil && k == target
}

func (it Issue) Unwrap() error { return it.Cause }

// Issues is a collection of failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].Error())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any issue is of the target kind.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if it.Is(target) {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// newIssue builds a single-issue error. kv pairs become Params.
func newIssue(path, code, detail string, kv ...any) Issues {
	msg := i18n.T(code, nil)
	if detail != "" {
		msg = msg + ": " + detail
	}
	var params map[string]any
	if len(kv) > 1 {
		params = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			params[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return Issues{{Path: path, Code: code, Message: msg, Params: params}}
}
