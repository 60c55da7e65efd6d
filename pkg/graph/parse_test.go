package graph

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParse_FencedDocumentWithProse(t *testing.T) {
	doc, err := json.Marshal(validShortGraph())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	raw := "Here is the argument graph you asked for.\n\n```json\n" + string(doc) + "\n```\n\nHope this helps!"

	g, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := Validate(g, BuildConstraints(3000)); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if g.NodeCount() != 6 {
		t.Fatalf("NodeCount() = %d, want 6", g.NodeCount())
	}

	again, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal parsed graph: %v", err)
	}
	if string(again) != string(doc) {
		t.Fatalf("parsed graph does not re-encode to the same document:\n got %s\nwant %s", again, doc)
	}
}

func TestParse_RepairsTrailingComma(t *testing.T) {
	raw := `{"core_claim": "x", "verdict": {"strongest": "a", "weakest": "b",}, "phases": [],}`
	g, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if g.CoreClaim != "x" || g.Verdict == nil || g.Verdict.Weakest != "b" {
		t.Fatalf("unexpected graph: %+v", g)
	}
}

func TestParse_NoBraces(t *testing.T) {
	_, err := Parse("I am sorry, I cannot help with that article.")
	if !errors.Is(err, ErrParseFailed) {
		t.Fatalf("Parse() error = %v, want ErrParseFailed", err)
	}
}

func TestParse_WrongShapeIsValidationFailure(t *testing.T) {
	_, err := Parse(`{"core_claim": "x", "phases": "none"}`)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Parse() error = %v, want ErrValidationFailed", err)
	}
	if !strings.Contains(err.Error(), "invalid shape") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestParse_MissingGapsBecomeEmpty(t *testing.T) {
	g, err := Parse(`{"core_claim":"x","phases":[{"id":1,"title":"t","nodes":[],"connectors":[]}]}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if g.Phases[0].Gaps == nil {
		t.Fatalf("gaps should decode as an empty list")
	}
}

func TestParse_MissingTransitionIsNull(t *testing.T) {
	g, err := Parse(`{"phases":[{"nodes":[{"id":"1-0","level":1}]}]}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if g.Phases[0].Nodes[0].Transition != nil {
		t.Fatalf("missing transition should decode as nil")
	}
}
