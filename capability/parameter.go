// Package capability is the interface an external code-rewriting facility uses
// to turn a structured parameter into the flat arrays it actually reads.
//
// A rewriter asks a Parameter for the array behind (member, attribute) and
// receives a symbol to use in the rewritten code; the parameter records every
// request so the caller can later bind exactly those arrays.
package capability

import (
	"fmt"

	"github.com/reoring/oamap"
	"github.com/reoring/oamap/i18n"
)

// Attribute names one array a member type reads.
type Attribute string

const (
	Data       Attribute = "data"
	Mask       Attribute = "mask"
	StartArray Attribute = "startarray"
	EndArray   Attribute = "endarray"
	Tags       Attribute = "tags"
	Offsets    Attribute = "offsets"
	Indexes    Attribute = "indexes"
)

// Requirement is one recorded (member, attribute) request.
type Requirement struct {
	Symbol string
	Member *oamap.Type
	Attr   Attribute
	Array  oamap.ArrayRef
}

// Parameter is a function parameter of structured type. A Parameter created
// with a nil root is a plain parameter that passes through untransformed.
type Parameter struct {
	index int
	name  string
	root  *oamap.Type
	syms  *Symbols

	members  []*oamap.Type
	memberID map[oamap.TypeID]int
	seen     map[requireKey]int
	required []Requirement
}

type requireKey struct {
	member int
	attr   Attribute
}

// New returns the transformed parameter at position index whose value has
// type root. Member numbering follows root.Members().
func New(index int, name string, root *oamap.Type, syms *Symbols) *Parameter {
	p := &Parameter{index: index, name: name, root: root, syms: syms, seen: make(map[requireKey]int)}
	if p.syms == nil {
		p.syms = NewSymbols(name)
	}
	if root != nil {
		p.members = root.Members()
		p.memberID = make(map[oamap.TypeID]int, len(p.members))
		for i, m := range p.members {
			p.memberID[m.ID()] = i
		}
	}
	return p
}

// Plain returns an untransformed parameter.
func Plain(index int, name string) *Parameter { return New(index, name, nil, nil) }

func (p *Parameter) Index() int             { return p.index }
func (p *Parameter) Name() string           { return p.name }
func (p *Parameter) Type() *oamap.Type      { return p.root }
func (p *Parameter) Transformed() bool      { return p.root != nil }
func (p *Parameter) Members() []*oamap.Type { return append([]*oamap.Type(nil), p.members...) }

// Require returns the symbol standing for the attr array of member. The first
// request of each (member, attr) pair is recorded; repeats return the same
// symbol.
func (p *Parameter) Require(member *oamap.Type, attr Attribute) (string, error) {
	if p.root == nil {
		return "", misuse(fmt.Sprintf("parameter %q is not transformed", p.name))
	}
	if member == nil || member.Tree() != p.root.Tree() {
		return "", misuse(fmt.Sprintf("type is not a member of parameter %q", p.name))
	}
	id, ok := p.memberID[member.ID()]
	if !ok {
		return "", misuse(fmt.Sprintf("type #%d is not a member of parameter %q", member.ID(), p.name))
	}
	ref, err := arrayOf(member, attr)
	if err != nil {
		return "", err
	}
	k := requireKey{member: id, attr: attr}
	if i, ok := p.seen[k]; ok {
		return p.required[i].Symbol, nil
	}
	sym := p.syms.Sym(fmt.Sprintf("par%d_mem%d_%s_%s", p.index, id, member.Name(), attr))
	p.seen[k] = len(p.required)
	p.required = append(p.required, Requirement{Symbol: sym, Member: member, Attr: attr, Array: ref})
	return sym, nil
}

// arrayOf is the array the resolver reads for attr of t.
func arrayOf(t *oamap.Type, attr Attribute) (oamap.ArrayRef, error) {
	var ref oamap.ArrayRef
	switch attr {
	case Mask:
		ref = t.Mask()
	case Data:
		if t.Kind() == oamap.KindPrimitive {
			ref = t.Data()
		}
	case StartArray:
		if t.Kind() == oamap.KindList {
			ref = t.Starts()
		}
	case EndArray:
		if t.Kind() == oamap.KindList {
			ref = t.Stops()
		}
	case Tags:
		if t.Kind() == oamap.KindUnion {
			ref = t.Tags()
		}
	case Offsets:
		if t.Kind() == oamap.KindUnion {
			ref = t.Offsets()
		}
	case Indexes:
		// a nullable pointer reads target indexes from its mask
		if t.Kind() == oamap.KindPointer && !t.Nullable() {
			ref = t.Indexes()
		}
	default:
		return oamap.ArrayRef{}, misuse(fmt.Sprintf("unknown attribute %q", attr))
	}
	if ref.Name == "" || !ref.Valid() {
		return oamap.ArrayRef{}, misuse(fmt.Sprintf("%s #%d has no %s array", t.Kind(), t.ID(), attr))
	}
	return ref, nil
}

// Required lists the recorded requests in the order they were first made.
func (p *Parameter) Required() []Requirement { return append([]Requirement(nil), p.required...) }

// Args is the argument list the parameter becomes: its name when plain, the
// required symbols when transformed.
func (p *Parameter) Args() []string {
	if p.root == nil {
		return []string{p.name}
	}
	out := make([]string, len(p.required))
	for i, r := range p.required {
		out[i] = r.Symbol
	}
	return out
}

// Bindings maps every required symbol to its array, fetched through bag.
func (p *Parameter) Bindings(bag *oamap.Baggage) (map[string]oamap.Array, error) {
	out := make(map[string]oamap.Array, len(p.required))
	for _, r := range p.required {
		a, err := bag.Slot(r.Array.Slot)
		if err != nil {
			return nil, err
		}
		out[r.Symbol] = a
	}
	return out, nil
}

// Parameters is the ordered parameter list of one function.
type Parameters struct {
	order  []*Parameter
	lookup map[string]*Parameter
}

func NewParameters(params ...*Parameter) *Parameters {
	ps := &Parameters{order: params, lookup: make(map[string]*Parameter, len(params))}
	for _, p := range params {
		ps.lookup[p.name] = p
	}
	return ps
}

// Lookup finds a parameter by name.
func (ps *Parameters) Lookup(name string) (*Parameter, bool) {
	p, ok := ps.lookup[name]
	return p, ok
}

// IsTransformed reports whether name is a transformed parameter.
func (ps *Parameters) IsTransformed(name string) bool {
	p, ok := ps.lookup[name]
	return ok && p.Transformed()
}

// EffectiveType is the type of a transformed parameter, nil when unknown.
func (ps *Parameters) EffectiveType(name string) *oamap.Type {
	if p, ok := ps.lookup[name]; ok {
		return p.root
	}
	return nil
}

// Args concatenates every parameter's Args in order.
func (ps *Parameters) Args() []string {
	var out []string
	for _, p := range ps.order {
		out = append(out, p.Args()...)
	}
	return out
}

// Projection is the set of array names required so far, in first-request
// order, without duplicates.
func (ps *Parameters) Projection() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range ps.order {
		for _, r := range p.required {
			if !seen[r.Array.Name] {
				seen[r.Array.Name] = true
				out = append(out, r.Array.Name)
			}
		}
	}
	return out
}

func misuse(detail string) error {
	return oamap.Issues{{
		Code:    oamap.CodeCapabilityMisuse,
		Message: i18n.T(oamap.CodeCapabilityMisuse, nil) + ": " + detail,
	}}
}
