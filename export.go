package oamap

import (
	"crypto/sha256"
	"encoding/hex"

	json "github.com/goccy/go-json"
)

type treeDoc struct {
	Prefix    string    `json:"prefix"`
	Delimiter string    `json:"delimiter"`
	MaskDType string    `json:"maskDType"`
	Root      TypeID    `json:"root"`
	Arrays    []string  `json:"arrays"`
	Nodes     []nodeDoc `json:"nodes"`
}

type nodeDoc struct {
	ID       TypeID   `json:"id"`
	Kind     string   `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Nullable bool     `json:"nullable,omitempty"`
	Mask     *maskDoc `json:"mask,omitempty"`

	DType string `json:"dtype,omitempty"`
	Dims  []int  `json:"dims,omitempty"`
	Data  string `json:"data,omitempty"`

	Starts  string  `json:"starts,omitempty"`
	Stops   string  `json:"stops,omitempty"`
	Content *TypeID `json:"content,omitempty"`

	Tags          string   `json:"tags,omitempty"`
	Offsets       string   `json:"offsets,omitempty"`
	Possibilities []TypeID `json:"possibilities,omitempty"`

	Fields []fieldDoc `json:"fields,omitempty"`
	Types  []TypeID   `json:"types,omitempty"`

	Indexes      string  `json:"indexes,omitempty"`
	Target       *TypeID `json:"target,omitempty"`
	TargetShared bool    `json:"targetShared,omitempty"`
}

type maskDoc struct {
	Array string `json:"array"`
	Value int64  `json:"value"`
	DType string `json:"dtype"`
}

type fieldDoc struct {
	Name string `json:"name"`
	Type TypeID `json:"type"`
}

// MarshalJSON encodes the compiled tree: its naming parameters, array table
// and every node with finalized array names. The encoding is deterministic.
func (tr *Tree) MarshalJSON() ([]byte, error) {
	doc := treeDoc{
		Prefix:    tr.prefix,
		Delimiter: tr.delimiter,
		MaskDType: tr.maskDType.String(),
		Root:      tr.root,
		Arrays:    tr.Arrays(),
		Nodes:     make([]nodeDoc, len(tr.nodes)),
	}
	for i, t := range tr.nodes {
		doc.Nodes[i] = t.doc()
	}
	return json.Marshal(doc)
}

func (t *Type) doc() nodeDoc {
	d := nodeDoc{ID: t.id, Kind: t.kind.String(), Name: t.name, Nullable: t.nullable}
	if t.nullable {
		d.Mask = &maskDoc{Array: t.mask.Name, Value: MaskedValue, DType: t.tree.maskDType.String()}
	}
	switch t.kind {
	case KindPrimitive:
		d.DType, d.Dims, d.Data = t.dtype.String(), t.dims, t.data.Name
	case KindList:
		c := t.content
		d.Starts, d.Stops, d.Content = t.starts.Name, t.stops.Name, &c
	case KindUnion:
		d.Tags, d.Offsets, d.Possibilities = t.tags.Name, t.offsets.Name, t.possibilities
	case KindRecord:
		d.Fields = make([]fieldDoc, len(t.fields))
		for i, f := range t.fields {
			d.Fields[i] = fieldDoc{Name: f.name, Type: f.id}
		}
	case KindTuple:
		d.Types = t.types
	case KindPointer:
		tg := t.target
		d.Indexes, d.Target, d.TargetShared = t.indexes.Name, &tg, t.targetShared
	}
	return d
}

// Fingerprint is a stable hash of the tree's JSON encoding. Two trees compiled
// from equal schemas with equal options share a fingerprint.
func (tr *Tree) Fingerprint() string {
	tr.fpOnce.Do(func() {
		b, err := tr.MarshalJSON()
		if err != nil {
			return
		}
		sum := sha256.Sum256(b)
		tr.fp = hex.EncodeToString(sum[:])
	})
	return tr.fp
}
