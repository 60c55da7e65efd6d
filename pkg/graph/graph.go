package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/invopop/jsonschema"
)

// NodeType classifies the role a node plays in the reasoning chain.
type NodeType string

const (
	NodeOrigin     NodeType = "origin"
	NodeSetup      NodeType = "setup"
	NodeReasoning  NodeType = "reasoning"
	NodeTurning    NodeType = "turning"
	NodeConclusion NodeType = "conclusion"
)

// ConnectorType names the logical relation a connector draws between nodes.
type ConnectorType string

const (
	ConnectorCausal       ConnectorType = "causal"
	ConnectorParallel     ConnectorType = "parallel"
	ConnectorRebuttal     ConnectorType = "rebuttal"
	ConnectorEvidence     ConnectorType = "evidence"
	ConnectorSelfQuestion ConnectorType = "self_question"
	ConnectorFork         ConnectorType = "fork"
	ConnectorMerge        ConnectorType = "merge"
)

// Severity rates how much a gap weakens the final conclusion.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AnalysisGraph is the argument graph of a single article. It is decoded from
// generator output by Parse and must pass Validate before it leaves the
// service. Once validated it is treated as an immutable value.
//
// An analysis graph contains:
//   - CoreClaim: the one sentence the whole article argues for
//   - Verdict: the quality assessment of the reasoning
//   - Phases: ordered logical stages, each holding nodes, connectors and gaps
type AnalysisGraph struct {
	CoreClaim         string   `json:"core_claim"`
	ArgumentDensity   string   `json:"argument_density"`
	ClaimClarity      string   `json:"claim_clarity"`
	LogicCompleteness string   `json:"logic_completeness"`
	Verdict           *Verdict `json:"verdict"`
	Phases            []Phase  `json:"phases"`
}

// Verdict summarizes the strongest and weakest step of the argument.
type Verdict struct {
	Strongest     string `json:"strongest"`
	Weakest       string `json:"weakest"`
	ReadingAdvice string `json:"reading_advice"`
}

// Phase is a logical stage of the argument, not a paragraph of the source.
// Connectors and gaps reference node ids, which are unique across the whole
// document rather than per phase.
type Phase struct {
	ID         FlexID      `json:"id"`
	Title      string      `json:"title"`
	Subtitle   string      `json:"subtitle"`
	Nodes      []Node      `json:"nodes"`
	Connectors []Connector `json:"connectors"`
	Gaps       []Gap       `json:"gaps"`
}

// Node is a single claim, fact or counter position in the reasoning chain.
//
// Transition explains why the reader moves on to the next node. It is nil
// only for the terminal node, the last node of the last phase.
type Node struct {
	ID         string   `json:"id"`
	Level      int      `json:"level" jsonschema:"enum=1,enum=2"`
	Type       NodeType `json:"type" jsonschema:"enum=origin,enum=setup,enum=reasoning,enum=turning,enum=conclusion"`
	Title      string   `json:"title"`
	OneLiner   string   `json:"one_liner"`
	Summary    string   `json:"summary"`
	Evidence   string   `json:"evidence"`
	Transition *string  `json:"transition" jsonschema:"nullable"`
}

// Connector links nodes. Fork connectors fan out from one node to several,
// merge connectors join several into one, all other types link exactly one
// node to one node.
type Connector struct {
	Type  ConnectorType `json:"type" jsonschema:"enum=causal,enum=parallel,enum=rebuttal,enum=evidence,enum=self_question,enum=fork,enum=merge"`
	From  IDRef         `json:"from"`
	To    IDRef         `json:"to"`
	Label string        `json:"label"`
}

// Gap flags a reasoning step the author skipped after a given node.
type Gap struct {
	AfterNode string   `json:"after_node"`
	Title     string   `json:"title"`
	Detail    string   `json:"detail"`
	Severity  Severity `json:"severity" jsonschema:"enum=low,enum=medium,enum=high"`
}

// IDRef is a connector endpoint. Generators write either a single id or an
// array of ids; Multi records which form was used so arity can be checked
// against the connector type and the original shape is kept on output.
type IDRef struct {
	IDs   []string
	Multi bool
}

func (r *IDRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = IDRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("connector endpoint: %w", err)
		}
		*r = IDRef{IDs: ids, Multi: true}
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("connector endpoint: %w", err)
	}
	*r = IDRef{IDs: []string{id}}
	return nil
}

func (r IDRef) MarshalJSON() ([]byte, error) {
	if r.Multi {
		if r.IDs == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(r.IDs)
	}
	if len(r.IDs) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(r.IDs[0])
}

// Single returns the id and true when the reference holds exactly one id
// written in the single-value form.
func (r IDRef) Single() (string, bool) {
	if r.Multi || len(r.IDs) != 1 {
		return "", false
	}
	return r.IDs[0], true
}

func (IDRef) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

// FlexID is a phase id. Generators emit phase ids as numbers or strings;
// the original form is written back unchanged.
type FlexID struct {
	Value   string
	Numeric bool
}

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID{Value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("phase id: %w", err)
	}
	*f = FlexID{Value: n.String(), Numeric: true}
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	if f.Value == "" {
		return []byte("null"), nil
	}
	if f.Numeric {
		return []byte(f.Value), nil
	}
	return json.Marshal(f.Value)
}

func (f FlexID) String() string {
	return f.Value
}

func (FlexID) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "integer"},
			{Type: "string"},
		},
	}
}

// NodeCount returns the total number of nodes across all phases.
func (g *AnalysisGraph) NodeCount() int {
	total := 0
	for _, p := range g.Phases {
		total += len(p.Nodes)
	}
	return total
}

func phaseLabel(p Phase, index int) string {
	if p.ID.Value != "" {
		return p.ID.Value
	}
	return strconv.Itoa(index + 1)
}
