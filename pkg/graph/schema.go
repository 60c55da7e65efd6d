package graph

import (
	"sync"

	"github.com/lumen-atj/lumen/backend/pkg/ai"

	"github.com/invopop/jsonschema"
)

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
)

// Schema returns the JSON Schema of AnalysisGraph for rendering clients. It
// describes shape only. Validate enforces more than the schema can express.
func Schema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		schema = ai.GenerateSchema(&AnalysisGraph{})
		schema.Title = "AnalysisGraph"
		schema.Description = "Validated argument graph of one article"
	})
	return schema
}
