package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidationFailed is wrapped by every ValidationError.
var ErrValidationFailed = errors.New("analysis validation failed")

// ValidationError reports the first structural rule a document breaks.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid analysis: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Validate checks g against every structural rule and the tier bounds b.
// It never modifies g.
func Validate(g *AnalysisGraph, b Bounds) error {
	if g == nil {
		return invalid("response is not a JSON object")
	}
	if blank(g.CoreClaim) {
		return invalid("missing core_claim")
	}
	if g.Verdict == nil {
		return invalid("missing or invalid verdict")
	}
	if blank(g.Verdict.Strongest) || blank(g.Verdict.Weakest) {
		return invalid("verdict missing strongest/weakest")
	}
	if len(g.Phases) == 0 {
		return invalid("missing phases")
	}

	for i, p := range g.Phases {
		label := phaseLabel(p, i)
		if blank(p.Title) {
			return invalid("phase %s missing title", label)
		}
		if len(p.Nodes) == 0 {
			return invalid("phase %s has no nodes", label)
		}
		if p.Connectors == nil {
			return invalid("phase %s missing connectors", label)
		}
	}

	if n := len(g.Phases); n < b.MinPhases || n > b.MaxPhases {
		return invalid("expected %d-%d phases, got %d", b.MinPhases, b.MaxPhases, n)
	}

	ids, err := checkNodes(g, b)
	if err != nil {
		return err
	}

	for i, p := range g.Phases {
		label := phaseLabel(p, i)
		for j, c := range p.Connectors {
			if err := checkConnector(c, ids); err != nil {
				return invalid("phase %s connector %d: %s", label, j, err)
			}
		}
		for j, gap := range p.Gaps {
			if err := checkGap(gap, ids); err != nil {
				return invalid("phase %s gap %d: %s", label, j, err)
			}
		}
	}

	return nil
}

func checkNodes(g *AnalysisGraph, b Bounds) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	var total, level1, level2 int

	lastPhase := len(g.Phases) - 1
	for pi, p := range g.Phases {
		label := phaseLabel(p, pi)
		for ni, n := range p.Nodes {
			terminal := pi == lastPhase && ni == len(p.Nodes)-1

			if blank(n.ID) {
				return nil, invalid("phase %s node %d missing id", label, ni)
			}
			if _, dup := ids[n.ID]; dup {
				return nil, invalid("duplicate node id %q", n.ID)
			}
			ids[n.ID] = struct{}{}

			switch n.Level {
			case 1:
				level1++
			case 2:
				level2++
			default:
				return nil, invalid("node %q has invalid level %d", n.ID, n.Level)
			}
			if !validNodeType(n.Type) {
				return nil, invalid("node %q has invalid type %q", n.ID, n.Type)
			}
			if blank(n.Title) {
				return nil, invalid("node %q missing title", n.ID)
			}
			if blank(n.Evidence) {
				return nil, invalid("node %q has empty evidence", n.ID)
			}

			if terminal {
				if n.Transition != nil {
					return nil, invalid("last node %q must have a null transition", n.ID)
				}
			} else if n.Transition == nil || blank(*n.Transition) {
				return nil, invalid("node %q is missing a transition", n.ID)
			}
			total++
		}
	}

	if total < b.MinNodes || total > b.MaxNodes {
		return nil, invalid("expected %d-%d nodes, got %d", b.MinNodes, b.MaxNodes, total)
	}
	if level1 < b.MinLevel1 || level1 > b.MaxLevel1 {
		return nil, invalid("expected %d-%d level 1 nodes, got %d", b.MinLevel1, b.MaxLevel1, level1)
	}
	if level2 < b.MinLevel2 {
		return nil, invalid("expected at least %d level 2 nodes, got %d", b.MinLevel2, level2)
	}

	return ids, nil
}

func checkConnector(c Connector, ids map[string]struct{}) error {
	switch c.Type {
	case ConnectorFork:
		if _, ok := c.From.Single(); !ok {
			return errors.New("fork needs a single from id")
		}
		if !c.To.Multi || len(c.To.IDs) < 2 {
			return errors.New("fork needs an array of at least two to ids")
		}
	case ConnectorMerge:
		if !c.From.Multi || len(c.From.IDs) < 2 {
			return errors.New("merge needs an array of at least two from ids")
		}
		if _, ok := c.To.Single(); !ok {
			return errors.New("merge needs a single to id")
		}
	case ConnectorCausal, ConnectorParallel, ConnectorRebuttal, ConnectorEvidence, ConnectorSelfQuestion:
		if _, ok := c.From.Single(); !ok {
			return fmt.Errorf("%s needs a single from id", c.Type)
		}
		if _, ok := c.To.Single(); !ok {
			return fmt.Errorf("%s needs a single to id", c.Type)
		}
	default:
		return fmt.Errorf("unknown connector type %q", c.Type)
	}

	for _, ref := range []IDRef{c.From, c.To} {
		seen := make(map[string]struct{}, len(ref.IDs))
		for _, id := range ref.IDs {
			if _, ok := ids[id]; !ok {
				return fmt.Errorf("references unknown node %q", id)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("repeats node %q", id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

func checkGap(g Gap, ids map[string]struct{}) error {
	if _, ok := ids[g.AfterNode]; !ok {
		return fmt.Errorf("after_node references unknown node %q", g.AfterNode)
	}
	switch g.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return nil
	default:
		return fmt.Errorf("invalid severity %q", g.Severity)
	}
}

func validNodeType(t NodeType) bool {
	switch t {
	case NodeOrigin, NodeSetup, NodeReasoning, NodeTurning, NodeConclusion:
		return true
	}
	return false
}
