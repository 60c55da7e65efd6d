package analysis

import (
	"fmt"

	"github.com/lumen-atj/lumen/backend/pkg/ai"
	"github.com/lumen-atj/lumen/backend/pkg/graph"
)

// BuildPrompt renders ai.AnalysisPrompt for text with the bounds embedded.
func BuildPrompt(b graph.Bounds, text string) string {
	return fmt.Sprintf(ai.AnalysisPrompt,
		b.MinNodes,
		b.MaxNodes,
		b.MinLevel1,
		b.MaxLevel1,
		b.MinLevel2,
		b.MinPhases,
		b.MaxPhases,
		b.KiloChars(),
		text,
	)
}
