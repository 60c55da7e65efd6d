package graph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lumen-atj/lumen/backend/pkg/ai"
)

// ErrParseFailed is returned when generator output holds no decodable JSON
// object.
var ErrParseFailed = errors.New("AI JSON parse failed")

// Parse decodes raw generator output into an AnalysisGraph. The object is
// located with ai.ExtractJSONObject and repaired with ai.RepairJSON when it
// is not well-formed. Output that is JSON but has the wrong shape (a string
// where an array belongs, say) yields a ValidationError.
//
// Parse does not enforce the graph invariants; call Validate on the result.
func Parse(raw string) (*AnalysisGraph, error) {
	candidate, err := ai.ExtractJSONObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	doc, err := ai.RepairJSON(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	var g AnalysisGraph
	if err := json.Unmarshal([]byte(doc), &g); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
		}
		return nil, invalid("document has an invalid shape: %v", err)
	}

	for i := range g.Phases {
		if g.Phases[i].Gaps == nil {
			g.Phases[i].Gaps = []Gap{}
		}
	}

	return &g, nil
}
