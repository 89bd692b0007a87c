package schemadoc_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/oamap"
	"github.com/reoring/oamap/schemadoc"
)

const linkedListYAML = `
kind: list
content:
  kind: record
  id: Node
  fields:
    - name: label
      type: {kind: primitive, dtype: int64}
    - name: next
      type: {kind: pointer, nullable: true, target: {ref: Node}}
`

const linkedListArrays = `
object-B: {dtype: int64, values: [0]}
object-E: {dtype: int64, values: [3]}
object-L-Flabel: {dtype: int64, values: [1, 2, 3]}
object-L-Fnext-M: {dtype: int32, values: [1, 2, -1]}
`

func TestDecodeYAML_SelfReferencingPointer(t *testing.T) {
	schemas, err := schemadoc.DecodeYAML([]byte(linkedListYAML))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(schemas) != 1 {
		t.Fatalf("expected 1 schema, got %d", len(schemas))
	}
	list := schemas[0].(*oamap.List)
	rec := list.Content.(*oamap.Record)
	ptr := rec.Field("next").(*oamap.Pointer)
	if ptr.Target != oamap.Schema(rec) {
		t.Fatalf("ref should resolve to the same record instance")
	}

	tree, err := oamap.Compile(schemas[0])
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	arrays, err := schemadoc.DecodeArraysYAML([]byte(linkedListArrays))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v, err := oamap.Bind(tree, arrays, nil).Get(0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	var labels []int64
	node, _ := v.(oamap.ListView).Get(0)
	for node != nil {
		r := node.(oamap.RecordView)
		label, err := r.Field("label")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		labels = append(labels, label.(int64))
		if node, err = r.Field("next"); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if len(labels) != 3 || labels[0] != 1 || labels[1] != 2 || labels[2] != 3 {
		t.Fatalf("labels = %v, want [1 2 3]", labels)
	}
}

func TestJSON_RoundTripPreservesSharing(t *testing.T) {
	shared := &oamap.Primitive{DType: oamap.Float32, Name: "pt"}
	rec := &oamap.Record{Name: "Particle"}
	rec.Set("px", shared).Set("py", shared).Set("parent", &oamap.Pointer{Target: rec, Nullable: true})
	s := &oamap.List{Content: &oamap.Union{Possibilities: []oamap.Schema{rec, &oamap.Tuple{Types: []oamap.Schema{shared}}}}}

	data, err := schemadoc.EncodeJSON(s)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(string(data), `"ref": "Particle"`) || !strings.Contains(string(data), `"id": "pt"`) {
		t.Fatalf("expected ids and refs in document:\n%s", data)
	}
	back, err := schemadoc.DecodeJSON(data)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if back.String() != s.String() {
		t.Fatalf("round trip changed the schema:\n got %s\nwant %s", back, s)
	}

	t1, err := oamap.Compile(s)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	t2, err := oamap.Compile(back)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if t1.Fingerprint() != t2.Fingerprint() {
		t.Fatalf("compiled trees differ after round trip")
	}
}

func TestYAML_EncodeMultiDocument(t *testing.T) {
	a := &oamap.Primitive{DType: oamap.Int16, Dims: []int{2, 3}}
	b := &oamap.List{Content: &oamap.Primitive{DType: oamap.Bool}, Nullable: true, Starts: "s", Stops: "e"}
	data, err := schemadoc.EncodeYAML(a, b)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	back, err := schemadoc.DecodeYAML(data)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(back) != 2 || back[0].String() != a.String() || back[1].String() != b.String() {
		t.Fatalf("multi-document round trip mismatch:\n%s", data)
	}
}

func TestBuild_CollectsIssues(t *testing.T) {
	doc := `{"kind":"record","fields":[
		{"name":"a","type":{"kind":"primitive","dtype":"complex128"}},
		{"name":"b","type":{"ref":"nowhere"}},
		{"name":"c","type":{"kind":"map"}}
	]}`
	_, err := schemadoc.DecodeJSON([]byte(doc))
	iss, ok := oamap.AsIssues(err)
	if !ok || len(iss) != 3 {
		t.Fatalf("expected 3 issues, got %v", err)
	}
	if iss[0].Code != oamap.CodeInvalidDType || iss[0].Path != "/fields/0/type/dtype" {
		t.Fatalf("unexpected first issue: %+v", iss[0])
	}
	if !errors.Is(err, oamap.ErrConfiguration) {
		t.Fatalf("expected configuration kind")
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	doc := `{"kind":"tuple","types":[{"kind":"primitive","dtype":"int8","id":"x"},{"kind":"primitive","dtype":"int8","id":"x"}]}`
	if _, err := schemadoc.DecodeJSON([]byte(doc)); !errors.Is(err, oamap.ErrConfiguration) {
		t.Fatalf("expected duplicate id to be rejected, got %v", err)
	}
}

func TestArrays_JSONFixture(t *testing.T) {
	doc := `{
		"x": {"dtype": "float64", "values": [1, 2.5, "NaN"]},
		"i": {"dtype": "uint8", "values": [0, 255]},
		"b": {"dtype": "bool", "values": [true, false]}
	}`
	arrays, err := schemadoc.DecodeArraysJSON([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	x, _ := arrays.Array("x")
	if x.DType() != oamap.Float64 || x.Len() != 3 || x.Float(1) != 2.5 {
		t.Fatalf("x = %v", x)
	}
	if f := x.Float(2); f == f {
		t.Fatalf("expected NaN, got %v", f)
	}
	i, _ := arrays.Array("i")
	if i.DType() != oamap.Uint8 || i.Value(1) != uint8(255) {
		t.Fatalf("i = %v", i)
	}

	_, err = schemadoc.DecodeArraysJSON([]byte(`{"o": {"dtype": "int8", "values": [128]}, "f": {"dtype": "int32", "values": [1.5]}}`))
	iss, ok := oamap.AsIssues(err)
	if !ok || len(iss) != 2 || iss[0].Path != "/f" || iss[1].Path != "/o" {
		t.Fatalf("expected two sorted issues, got %v", err)
	}
}

func TestReadFile_ByExtension(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "s.yaml")
	if err := os.WriteFile(yml, []byte(linkedListYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := schemadoc.ReadFile(yml)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	js := filepath.Join(dir, "s.json")
	data, _ := schemadoc.EncodeJSON(s)
	if err := os.WriteFile(js, data, 0o644); err != nil {
		t.Fatal(err)
	}
	s2, err := schemadoc.ReadFile(js)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.String() != s2.String() {
		t.Fatalf("yaml and json loads differ:\n%s\n%s", s, s2)
	}
}
