package oamap

import (
	"strconv"
	"strings"
)

// describer renders a schema graph. Nodes reached more than once get a "#N"
// label; the first occurrence prints "#N: Kind(...)" and later ones print "#N".
type describer struct {
	labels map[Schema]int
	shown  map[Schema]bool
}

func describe(s Schema) string {
	d := &describer{labels: map[Schema]int{}, shown: map[Schema]bool{}}
	d.collect(s, map[Schema]bool{})
	var b strings.Builder
	d.write(&b, s)
	return b.String()
}

func (d *describer) collect(s Schema, seen map[Schema]bool) {
	if isNilSchema(s) {
		return
	}
	if seen[s] {
		if _, ok := d.labels[s]; !ok {
			d.labels[s] = len(d.labels)
		}
		return
	}
	seen[s] = true
	for _, c := range children(s) {
		d.collect(c, seen)
	}
}

func (d *describer) write(b *strings.Builder, s Schema) {
	if isNilSchema(s) {
		b.WriteString("nil")
		return
	}
	label, labeled := d.labels[s]
	if labeled {
		if d.shown[s] {
			b.WriteString("#" + strconv.Itoa(label))
			return
		}
		b.WriteString("#" + strconv.Itoa(label) + ": ")
	}
	d.shown[s] = true

	var args []string
	arg := func(k, v string) {
		if v != "" {
			args = append(args, k+"="+strconv.Quote(v))
		}
	}
	nested := func(c Schema) string {
		var nb strings.Builder
		d.write(&nb, c)
		return nb.String()
	}
	nullable, mask, name := s.common()

	switch n := s.(type) {
	case *Primitive:
		args = append(args, n.DType.String())
		if len(n.Dims) > 0 {
			dims := make([]string, len(n.Dims))
			for i, x := range n.Dims {
				dims[i] = strconv.Itoa(x)
			}
			args = append(args, "dims=("+strings.Join(dims, ", ")+")")
		}
		if nullable {
			args = append(args, "nullable=true")
		}
		arg("data", n.Data)
	case *List:
		args = append(args, nested(n.Content))
		if nullable {
			args = append(args, "nullable=true")
		}
		arg("starts", n.Starts)
		arg("stops", n.Stops)
	case *Union:
		ps := make([]string, len(n.Possibilities))
		for i, p := range n.Possibilities {
			ps[i] = nested(p)
		}
		args = append(args, "["+strings.Join(ps, ", ")+"]")
		if nullable {
			args = append(args, "nullable=true")
		}
		arg("tags", n.Tags)
		arg("offsets", n.Offsets)
	case *Record:
		fs := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fs[i] = strconv.Quote(f.Name) + ": " + nested(f.Schema)
		}
		args = append(args, "{"+strings.Join(fs, ", ")+"}")
		if nullable {
			args = append(args, "nullable=true")
		}
	case *Tuple:
		ts := make([]string, len(n.Types))
		for i, t := range n.Types {
			ts[i] = nested(t)
		}
		args = append(args, "["+strings.Join(ts, ", ")+"]")
		if nullable {
			args = append(args, "nullable=true")
		}
	case *Pointer:
		args = append(args, nested(n.Target))
		if nullable {
			args = append(args, "nullable=true")
		}
		arg("indexes", n.Indexes)
	}
	arg("mask", mask)
	arg("name", name)

	b.WriteString(s.Kind().String())
	b.WriteByte('(')
	b.WriteString(strings.Join(args, ", "))
	b.WriteByte(')')
}

func (p *Primitive) String() string { return describe(p) }
func (l *List) String() string      { return describe(l) }
func (u *Union) String() string     { return describe(u) }
func (r *Record) String() string    { return describe(r) }
func (t *Tuple) String() string     { return describe(t) }
func (p *Pointer) String() string   { return describe(p) }

// isNilSchema reports whether s is nil or a typed nil pointer.
func isNilSchema(s Schema) bool {
	switch n := s.(type) {
	case nil:
		return true
	case *Primitive:
		return n == nil
	case *List:
		return n == nil
	case *Union:
		return n == nil
	case *Record:
		return n == nil
	case *Tuple:
		return n == nil
	case *Pointer:
		return n == nil
	}
	return false
}
