package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// insightBatchSchema is the envelope contract the synthesis prompt asks
// for. Every category is optional so a partial reply still validates; items
// inside a present category must carry the required fields.
const insightBatchSchema = `{
  "type": "object",
  "properties": {
    "themes": {"$ref": "#/definitions/items"},
    "biases": {"$ref": "#/definitions/items"},
    "patterns": {"$ref": "#/definitions/items"},
    "recommendations": {"$ref": "#/definitions/items"}
  },
  "definitions": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "description"],
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "confidence": {"type": "number"},
          "sources": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

// ValidateInsightBatch checks a cleaned reply against the envelope schema.
// Callers treat a failure as diagnostic only; ParseInsightBatch still
// salvages whatever categories parse.
func ValidateInsightBatch(raw string) error {
	cleaned, ok := ExtractJSON(raw)
	if !ok {
		return fmt.Errorf("no JSON object found in reply")
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(insightBatchSchema),
		gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var b strings.Builder
	for i, desc := range result.Errors() {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(desc.String())
	}
	return fmt.Errorf("reply does not match insight schema: %s", b.String())
}
