package oamap

// Schema is a mutable, user-authored description of a nested type and its
// backing array names. Schemas are built and mutated before Compile and must
// not be mutated concurrently.
//
// Implementations are *Primitive, *List, *Union, *Record, *Tuple and *Pointer.
// Pointer is the only kind allowed to close a cycle.
type Schema interface {
	Kind() Kind
	// String renders the schema in a stable, human-readable form.
	String() string

	common() (nullable bool, mask, name string)
}

// Primitive is a fixed-width value read from a single data array. Dims makes
// the value a fixed-shape block of prod(Dims) consecutive elements.
type Primitive struct {
	DType    DType
	Dims     []int
	Nullable bool
	Data     string // explicit data array name; derived from the prefix when empty
	Mask     string
	Name     string
}

// List is a variable-length sequence addressed by a starts and a stops array.
type List struct {
	Content  Schema
	Nullable bool
	Starts   string
	Stops    string
	Mask     string
	Name     string
}

// Union is one of several possibilities, selected per position by the tags
// array and addressed in the chosen possibility by the offsets array.
type Union struct {
	Possibilities []Schema
	Nullable      bool
	Tags          string
	Offsets       string
	Mask          string
	Name          string
}

// Field is a named member of a Record.
type Field struct {
	Name   string
	Schema Schema
}

// Record contains named fields. Fields are siblings: each resolves at the
// record's own position.
type Record struct {
	Fields   []Field
	Nullable bool
	Mask     string
	Name     string
}

// Tuple is like Record with positional fields.
type Tuple struct {
	Types    []Schema
	Nullable bool
	Mask     string
	Name     string
}

// Pointer redirects resolution to Indexes[position] in Target, which may be an
// ancestor (self-reference) or any other node of the same schema graph.
type Pointer struct {
	Target   Schema
	Nullable bool
	Indexes  string
	Mask     string
	Name     string
}

func (*Primitive) Kind() Kind { return KindPrimitive }
func (*List) Kind() Kind      { return KindList }
func (*Union) Kind() Kind     { return KindUnion }
func (*Record) Kind() Kind    { return KindRecord }
func (*Tuple) Kind() Kind     { return KindTuple }
func (*Pointer) Kind() Kind   { return KindPointer }

func (p *Primitive) common() (bool, string, string) { return p.Nullable, p.Mask, p.Name }
func (l *List) common() (bool, string, string)      { return l.Nullable, l.Mask, l.Name }
func (u *Union) common() (bool, string, string)     { return u.Nullable, u.Mask, u.Name }
func (r *Record) common() (bool, string, string)    { return r.Nullable, r.Mask, r.Name }
func (t *Tuple) common() (bool, string, string)     { return t.Nullable, t.Mask, t.Name }
func (p *Pointer) common() (bool, string, string)   { return p.Nullable, p.Mask, p.Name }

// Field returns the schema of the named field, or nil.
func (r *Record) Field(name string) Schema {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Schema
		}
	}
	return nil
}

// Set replaces the named field or appends it when absent.
func (r *Record) Set(name string, s Schema) *Record {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Schema = s
			return r
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Schema: s})
	return r
}

// Delete removes the named field if present.
func (r *Record) Delete(name string) *Record {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields = append(r.Fields[:i], r.Fields[i+1:]...)
			break
		}
	}
	return r
}

// Append adds possibilities at the end.
func (u *Union) Append(s ...Schema) *Union {
	u.Possibilities = append(u.Possibilities, s...)
	return u
}

// Append adds positional types at the end.
func (t *Tuple) Append(s ...Schema) *Tuple {
	t.Types = append(t.Types, s...)
	return t
}

// children lists the direct members of s in declaration order, including a
// pointer's target.
func children(s Schema) []Schema {
	switch n := s.(type) {
	case *List:
		return []Schema{n.Content}
	case *Union:
		return n.Possibilities
	case *Record:
		out := make([]Schema, len(n.Fields))
		for i, f := range n.Fields {
			out[i] = f.Schema
		}
		return out
	case *Tuple:
		return n.Types
	case *Pointer:
		return []Schema{n.Target}
	}
	return nil
}
