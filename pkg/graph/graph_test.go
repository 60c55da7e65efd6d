package graph

import (
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func node(id string, level int, typ NodeType, transition *string) Node {
	return Node{
		ID:         id,
		Level:      level,
		Type:       typ,
		Title:      "Title " + id,
		OneLiner:   "Preview " + id,
		Summary:    "Summary of " + id,
		Evidence:   "Evidence for " + id,
		Transition: transition,
	}
}

func single(id string) IDRef {
	return IDRef{IDs: []string{id}}
}

func multi(ids ...string) IDRef {
	return IDRef{IDs: ids, Multi: true}
}

// validShortGraph satisfies every short tier bound: 2 phases, 6 nodes,
// 3 level 1 and 3 level 2.
func validShortGraph() *AnalysisGraph {
	next := strPtr("Because this step holds, the next one follows from it.")
	return &AnalysisGraph{
		CoreClaim:         "Cities should price road space.",
		ArgumentDensity:   "6 steps / 3 thousand characters",
		ClaimClarity:      "high",
		LogicCompleteness: "1 gap",
		Verdict: &Verdict{
			Strongest:     "Step 1-2 ties the price to measured delay.",
			Weakest:       "Step 2-1 assumes demand is elastic.",
			ReadingAdvice: "Read phase 1 closely.",
		},
		Phases: []Phase{
			{
				ID:       FlexID{Value: "1", Numeric: true},
				Title:    "Problem",
				Subtitle: "Congestion is a pricing failure",
				Nodes: []Node{
					node("1-0", 1, NodeOrigin, next),
					node("1-1", 2, NodeSetup, next),
					node("1-2", 1, NodeReasoning, next),
				},
				Connectors: []Connector{
					{Type: ConnectorEvidence, From: single("1-0"), To: single("1-1"), Label: "example"},
					{Type: ConnectorFork, From: single("1-1"), To: multi("1-2", "2-0"), Label: "two scenarios"},
				},
				Gaps: []Gap{
					{AfterNode: "1-2", Title: "Elasticity", Detail: "Not measured.", Severity: SeverityMedium},
				},
			},
			{
				ID:       FlexID{Value: "2", Numeric: true},
				Title:    "Remedy",
				Subtitle: "Pricing fixes it",
				Nodes: []Node{
					node("2-0", 2, NodeReasoning, next),
					node("2-1", 1, NodeTurning, next),
					node("2-2", 2, NodeConclusion, nil),
				},
				Connectors: []Connector{
					{Type: ConnectorMerge, From: multi("1-2", "2-0"), To: single("2-1"), Label: "paths join"},
					{Type: ConnectorCausal, From: single("2-1"), To: single("2-2"), Label: "therefore"},
				},
				Gaps: []Gap{},
			},
		},
	}
}

func TestIDRefDecodesBothForms(t *testing.T) {
	var c Connector
	if err := json.Unmarshal([]byte(`{"type":"fork","from":"1-0","to":["1-1","1-2"],"label":"x"}`), &c); err != nil {
		t.Fatalf("unmarshal connector: %v", err)
	}
	if id, ok := c.From.Single(); !ok || id != "1-0" {
		t.Fatalf("from = %+v, want single 1-0", c.From)
	}
	if !c.To.Multi || len(c.To.IDs) != 2 {
		t.Fatalf("to = %+v, want array of two", c.To)
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal connector: %v", err)
	}
	if !strings.Contains(string(out), `"from":"1-0"`) || !strings.Contains(string(out), `"to":["1-1","1-2"]`) {
		t.Fatalf("connector did not keep its shape: %s", out)
	}
}

func TestIDRefRejectsObjects(t *testing.T) {
	var r IDRef
	if err := json.Unmarshal([]byte(`{"id":"1-0"}`), &r); err == nil {
		t.Fatalf("expected error for object endpoint")
	}
}

func TestFlexIDKeepsNumericForm(t *testing.T) {
	var p Phase
	if err := json.Unmarshal([]byte(`{"id":3,"title":"t","nodes":[],"connectors":[]}`), &p); err != nil {
		t.Fatalf("unmarshal phase: %v", err)
	}
	if p.ID.Value != "3" || !p.ID.Numeric {
		t.Fatalf("id = %+v, want numeric 3", p.ID)
	}
	out, _ := json.Marshal(p)
	if !strings.Contains(string(out), `"id":3`) {
		t.Fatalf("phase id lost numeric form: %s", out)
	}

	if err := json.Unmarshal([]byte(`{"id":"A","title":"t"}`), &p); err != nil {
		t.Fatalf("unmarshal string id: %v", err)
	}
	if p.ID.Value != "A" || p.ID.Numeric {
		t.Fatalf("id = %+v, want string A", p.ID)
	}
}

func TestTransitionNullRoundTrip(t *testing.T) {
	g := validShortGraph()
	out, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"transition":null`) {
		t.Fatalf("terminal transition not written as null: %s", out)
	}
}

func TestBuildConstraints(t *testing.T) {
	tests := []struct {
		chars int
		want  Tier
	}{
		{chars: 100, want: TierShort},
		{chars: 4000, want: TierShort},
		{chars: LongTierThreshold, want: TierShort},
		{chars: LongTierThreshold + 1, want: TierLong},
		{chars: 6000, want: TierLong},
		{chars: 50000, want: TierLong},
	}
	for _, tc := range tests {
		b := BuildConstraints(tc.chars)
		if b.Tier != tc.want {
			t.Fatalf("BuildConstraints(%d).Tier = %s, want %s", tc.chars, b.Tier, tc.want)
		}
		if b.CharCount != tc.chars {
			t.Fatalf("BuildConstraints(%d).CharCount = %d", tc.chars, b.CharCount)
		}
	}

	short := BuildConstraints(4000)
	if short.MinNodes != 6 || short.MaxNodes != 15 || short.MinLevel1 != 3 || short.MaxLevel1 != 5 ||
		short.MinLevel2 != 3 || short.MinPhases != 2 || short.MaxPhases != 4 {
		t.Fatalf("unexpected short bounds: %+v", short)
	}
	long := BuildConstraints(6000)
	if long.MinNodes != 15 || long.MaxNodes != 25 || long.MinLevel1 != 5 || long.MaxLevel1 != 8 ||
		long.MinLevel2 != 8 || long.MinPhases != 3 || long.MaxPhases != 6 {
		t.Fatalf("unexpected long bounds: %+v", long)
	}
	if long.KiloChars() != 6 {
		t.Fatalf("KiloChars() = %d, want 6", long.KiloChars())
	}
}

func TestSchemaDescribesGraph(t *testing.T) {
	raw, err := json.Marshal(Schema())
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	for _, want := range []string{"core_claim", "phases", "connectors", "self_question", "after_node"} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("schema missing %q", want)
		}
	}
}
