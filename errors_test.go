package oamap_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/reoring/oamap"
	"github.com/reoring/oamap/i18n"
)

// TestErrorModel_KindsAndAsIssues checks that every code maps to one error
// kind and that wrapped Issues are still reachable through AsIssues.
func TestErrorModel_KindsAndAsIssues(t *testing.T) {
	kinds := map[string]error{
		oamap.CodeInvalidSchema:    oamap.ErrConfiguration,
		oamap.CodeInvalidDType:     oamap.ErrConfiguration,
		oamap.CodeInvalidName:      oamap.ErrConfiguration,
		oamap.CodeSelfReference:    oamap.ErrConfiguration,
		oamap.CodeDTypeMismatch:    oamap.ErrType,
		oamap.CodeAbsentValue:      oamap.ErrType,
		oamap.CodeOutOfRange:       oamap.ErrOutOfRange,
		oamap.CodeMissingAttribute: oamap.ErrMissingAttribute,
		oamap.CodeMissingArray:     oamap.ErrMissingArray,
		oamap.CodeNotImplemented:   oamap.ErrNotImplemented,
		oamap.CodeCapabilityMisuse: oamap.ErrCapability,
		oamap.CodeBackendInvariant: oamap.ErrBackendInvariant,
	}
	for code, kind := range kinds {
		if got := oamap.KindOf(code); got != kind {
			t.Fatalf("KindOf(%s) = %v, want %v", code, got, kind)
		}
		if !errors.Is(oamap.Issue{Code: code}, kind) {
			t.Fatalf("Issue{%s} should match %v", code, kind)
		}
	}
	if oamap.KindOf("nope") != nil {
		t.Fatalf("unknown codes have no kind")
	}

	_, err := oamap.Bind(mustCompile(t, &oamap.Primitive{DType: oamap.Int64}), oamap.MapArrays{}, nil).Get(0)
	wrapped := fmt.Errorf("loading event 7: %w", err)
	iss, ok := oamap.AsIssues(wrapped)
	if !ok || len(iss) != 1 || iss[0].Code != oamap.CodeMissingArray || iss[0].Params["array"] != "object" {
		t.Fatalf("AsIssues(wrapped) = %v, %v", iss, ok)
	}
	if !errors.Is(wrapped, oamap.ErrMissingArray) || errors.Is(wrapped, oamap.ErrOutOfRange) {
		t.Fatalf("wrapped error kind mismatch: %v", wrapped)
	}
	if _, ok := oamap.AsIssues(errors.New("plain")); ok {
		t.Fatalf("plain errors are not issues")
	}
}

func TestErrorModel_SummaryAndCause(t *testing.T) {
	var iss oamap.Issues
	for i := range 5 {
		iss = oamap.AppendIssues(iss, oamap.Issue{Path: fmt.Sprintf("/fields/f%d", i), Code: oamap.CodeInvalidName, Message: "bad"})
	}
	msg := iss.Error()
	if !strings.HasPrefix(msg, "invalid_name at /fields/f0: bad; ") || !strings.HasSuffix(msg, "(total 5)") {
		t.Fatalf("summary = %s", msg)
	}
	if oamap.AppendIssues(nil) == nil {
		t.Fatalf("AppendIssues initializes the slice")
	}

	cause := errors.New("disk")
	it := oamap.Issue{Code: oamap.CodeBackendInvariant, Cause: cause}
	if !errors.Is(it, cause) || !errors.Is(it, oamap.ErrBackendInvariant) {
		t.Fatalf("issue should match both its cause and its kind")
	}
}

func TestErrorModel_LocalizedMessages(t *testing.T) {
	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	_, err := oamap.Compile(&oamap.List{})
	iss, ok := oamap.AsIssues(err)
	if !ok || !strings.HasPrefix(iss[0].Message, "スキーマが不正です") {
		t.Fatalf("expected a Japanese message, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	node := &oamap.Record{Name: "Node"}
	node.Set("next", &oamap.Pointer{Target: node, Nullable: true})

	leaf := &oamap.Primitive{DType: oamap.Float32}
	cases := []struct {
		name string
		s    oamap.Schema
		want string
	}{
		{"primitive", &oamap.Primitive{DType: oamap.Int64, Nullable: true, Data: "x"}, `Primitive(int64, nullable=true, data="x")`},
		{"dims", &oamap.Primitive{DType: oamap.Uint8, Dims: []int{2, 3}}, `Primitive(uint8, dims=(2, 3))`},
		{"list", &oamap.List{Content: &oamap.Primitive{DType: oamap.Bool}, Starts: "b"}, `List(Primitive(bool), starts="b")`},
		{"self pointer", node, `#0: Record({"next": Pointer(#0, nullable=true)}, name="Node")`},
		{"shared leaf", &oamap.Tuple{Types: []oamap.Schema{leaf, leaf}}, `Tuple([#0: Primitive(float32), #0])`},
		{"union", &oamap.Union{Possibilities: []oamap.Schema{&oamap.Primitive{DType: oamap.Int8}}, Mask: "m", Nullable: true}, `Union([Primitive(int8)], nullable=true, mask="m")`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.s.String(); got != c.want {
				t.Fatalf("got  %s\nwant %s", got, c.want)
			}
		})
	}
}
