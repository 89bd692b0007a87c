// Package schemadoc reads and writes schemas as JSON or YAML documents.
//
// A document is a tree of nodes keyed by "kind". A node may carry an "id"; a
// node of the form {"ref": "<id>"} stands for that same node, which is how
// shared members and self-referencing pointer targets are written:
//
//	kind: list
//	content:
//	  kind: record
//	  id: Node
//	  fields:
//	    - name: label
//	      type: {kind: primitive, dtype: int64}
//	    - name: next
//	      type: {kind: pointer, nullable: true, target: {ref: Node}}
package schemadoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/oamap"
	"github.com/reoring/oamap/i18n"
)

// Node is one schema node of a document.
type Node struct {
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Ref      string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Nullable bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Mask     string `json:"mask,omitempty" yaml:"mask,omitempty"`

	// Primitive
	DType string `json:"dtype,omitempty" yaml:"dtype,omitempty"`
	Dims  []int  `json:"dims,omitempty" yaml:"dims,omitempty,flow"`
	Data  string `json:"data,omitempty" yaml:"data,omitempty"`

	// List
	Content *Node  `json:"content,omitempty" yaml:"content,omitempty"`
	Starts  string `json:"starts,omitempty" yaml:"starts,omitempty"`
	Stops   string `json:"stops,omitempty" yaml:"stops,omitempty"`

	// Union
	Possibilities []*Node `json:"possibilities,omitempty" yaml:"possibilities,omitempty"`
	Tags          string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Offsets       string  `json:"offsets,omitempty" yaml:"offsets,omitempty"`

	// Record
	Fields []FieldNode `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Tuple
	Types []*Node `json:"types,omitempty" yaml:"types,omitempty"`

	// Pointer
	Target  *Node  `json:"target,omitempty" yaml:"target,omitempty"`
	Indexes string `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

// FieldNode is one record field. Field order is preserved.
type FieldNode struct {
	Name string `json:"name" yaml:"name"`
	Type *Node  `json:"type" yaml:"type"`
}

// Build converts a document into a schema graph. Nodes with the same id become
// the same schema instance. All problems are reported together as
// oamap.Issues.
func Build(root *Node) (oamap.Schema, error) {
	b := &builder{ids: make(map[string]*Node), built: make(map[*Node]oamap.Schema)}
	b.index(root, "")
	if len(b.issues) > 0 {
		return nil, b.issues
	}
	s := b.build(root, "")
	if len(b.issues) > 0 {
		return nil, b.issues
	}
	return s, nil
}

type builder struct {
	ids    map[string]*Node
	built  map[*Node]oamap.Schema
	issues oamap.Issues
}

func (b *builder) issuef(path, code, format string, a ...any) {
	msg := i18n.T(code, nil) + ": " + fmt.Sprintf(format, a...)
	b.issues = oamap.AppendIssues(b.issues, oamap.Issue{Path: path, Code: code, Message: msg})
}

func (b *builder) index(n *Node, path string) {
	if n == nil {
		return
	}
	if n.ID != "" {
		if _, dup := b.ids[n.ID]; dup {
			b.issuef(path, oamap.CodeInvalidSchema, "duplicate id %q", n.ID)
		} else {
			b.ids[n.ID] = n
		}
	}
	b.index(n.Content, path+"/content")
	for i, p := range n.Possibilities {
		b.index(p, path+"/possibilities/"+strconv.Itoa(i))
	}
	for i, f := range n.Fields {
		b.index(f.Type, path+"/fields/"+strconv.Itoa(i)+"/type")
	}
	for i, t := range n.Types {
		b.index(t, path+"/types/"+strconv.Itoa(i))
	}
	b.index(n.Target, path+"/target")
}

func (b *builder) build(n *Node, path string) oamap.Schema {
	if n == nil {
		b.issuef(path, oamap.CodeInvalidSchema, "missing node")
		return nil
	}
	if n.Ref != "" {
		target, ok := b.ids[n.Ref]
		if !ok {
			b.issuef(path, oamap.CodeInvalidSchema, "unknown ref %q", n.Ref)
			return nil
		}
		n = target
	}
	if s, ok := b.built[n]; ok {
		return s
	}

	// register before descending so references back to n close the cycle
	switch strings.ToLower(n.Kind) {
	case "primitive":
		p := &oamap.Primitive{Dims: n.Dims, Nullable: n.Nullable, Data: n.Data, Mask: n.Mask, Name: n.Name}
		b.built[n] = p
		d, err := oamap.ParseDType(n.DType)
		if err != nil {
			b.issuef(path+"/dtype", oamap.CodeInvalidDType, "%q", n.DType)
		}
		p.DType = d
		return p

	case "list":
		l := &oamap.List{Nullable: n.Nullable, Starts: n.Starts, Stops: n.Stops, Mask: n.Mask, Name: n.Name}
		b.built[n] = l
		l.Content = b.build(n.Content, path+"/content")
		return l

	case "union":
		u := &oamap.Union{Nullable: n.Nullable, Tags: n.Tags, Offsets: n.Offsets, Mask: n.Mask, Name: n.Name}
		b.built[n] = u
		for i, p := range n.Possibilities {
			u.Append(b.build(p, path+"/possibilities/"+strconv.Itoa(i)))
		}
		return u

	case "record":
		r := &oamap.Record{Nullable: n.Nullable, Mask: n.Mask, Name: n.Name}
		b.built[n] = r
		for i, f := range n.Fields {
			r.Fields = append(r.Fields, oamap.Field{Name: f.Name, Schema: b.build(f.Type, path+"/fields/"+strconv.Itoa(i)+"/type")})
		}
		return r

	case "tuple":
		t := &oamap.Tuple{Nullable: n.Nullable, Mask: n.Mask, Name: n.Name}
		b.built[n] = t
		for i, x := range n.Types {
			t.Append(b.build(x, path+"/types/"+strconv.Itoa(i)))
		}
		return t

	case "pointer":
		p := &oamap.Pointer{Nullable: n.Nullable, Indexes: n.Indexes, Mask: n.Mask, Name: n.Name}
		b.built[n] = p
		p.Target = b.build(n.Target, path+"/target")
		return p
	}
	b.issuef(path+"/kind", oamap.CodeInvalidSchema, "unknown kind %q", n.Kind)
	return nil
}

// FromSchema converts a schema graph into a document. Nodes reached more than
// once are written in full at their first occurrence with an id ("n0",
// "n1", ... unless the node is named and the name is unused) and as refs
// afterwards.
func FromSchema(s oamap.Schema) *Node {
	w := &writer{ids: make(map[oamap.Schema]string), used: make(map[string]bool), written: make(map[oamap.Schema]bool)}
	w.collect(s, make(map[oamap.Schema]bool))
	return w.write(s)
}

type writer struct {
	ids     map[oamap.Schema]string
	used    map[string]bool
	written map[oamap.Schema]bool
}

func (w *writer) collect(s oamap.Schema, seen map[oamap.Schema]bool) {
	if s == nil {
		return
	}
	if seen[s] {
		if _, ok := w.ids[s]; !ok {
			_, _, id := nameOf(s)
			for k := len(w.ids); id == "" || w.used[id]; k++ {
				id = "n" + strconv.Itoa(k)
			}
			w.ids[s] = id
			w.used[id] = true
		}
		return
	}
	seen[s] = true
	for _, c := range members(s) {
		w.collect(c, seen)
	}
}

func (w *writer) write(s oamap.Schema) *Node {
	if s == nil {
		return nil
	}
	id, shared := w.ids[s]
	if shared && w.written[s] {
		return &Node{Ref: id}
	}
	w.written[s] = true

	nullable, mask, name := nameOf(s)
	n := &Node{Kind: strings.ToLower(s.Kind().String()), ID: id, Name: name, Nullable: nullable, Mask: mask}
	switch x := s.(type) {
	case *oamap.Primitive:
		n.DType = x.DType.String()
		n.Dims, n.Data = x.Dims, x.Data
	case *oamap.List:
		n.Starts, n.Stops = x.Starts, x.Stops
		n.Content = w.write(x.Content)
	case *oamap.Union:
		n.Tags, n.Offsets = x.Tags, x.Offsets
		for _, p := range x.Possibilities {
			n.Possibilities = append(n.Possibilities, w.write(p))
		}
	case *oamap.Record:
		for _, f := range x.Fields {
			n.Fields = append(n.Fields, FieldNode{Name: f.Name, Type: w.write(f.Schema)})
		}
	case *oamap.Tuple:
		for _, t := range x.Types {
			n.Types = append(n.Types, w.write(t))
		}
	case *oamap.Pointer:
		n.Indexes = x.Indexes
		n.Target = w.write(x.Target)
	}
	return n
}

func nameOf(s oamap.Schema) (nullable bool, mask, name string) {
	switch x := s.(type) {
	case *oamap.Primitive:
		return x.Nullable, x.Mask, x.Name
	case *oamap.List:
		return x.Nullable, x.Mask, x.Name
	case *oamap.Union:
		return x.Nullable, x.Mask, x.Name
	case *oamap.Record:
		return x.Nullable, x.Mask, x.Name
	case *oamap.Tuple:
		return x.Nullable, x.Mask, x.Name
	case *oamap.Pointer:
		return x.Nullable, x.Mask, x.Name
	}
	return false, "", ""
}

func members(s oamap.Schema) []oamap.Schema {
	switch x := s.(type) {
	case *oamap.List:
		return []oamap.Schema{x.Content}
	case *oamap.Union:
		return x.Possibilities
	case *oamap.Record:
		out := make([]oamap.Schema, len(x.Fields))
		for i, f := range x.Fields {
			out[i] = f.Schema
		}
		return out
	case *oamap.Tuple:
		return x.Types
	case *oamap.Pointer:
		return []oamap.Schema{x.Target}
	}
	return nil
}
