package gateway

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// completedJobSchema is the contract for a completed job status response.
// The engine only hydrates analysis results from payloads that satisfy it;
// anything else is reported as a malformed response rather than probed
// field by field.
const completedJobSchema = `{
	"type": "object",
	"required": ["status", "payload"],
	"properties": {
		"status": {"const": "completed"},
		"payload": {
			"type": "object",
			"required": ["status", "scores"],
			"properties": {
				"status": {"type": "string"},
				"repository_name": {"type": "string"},
				"classification": {"type": "string"},
				"completed_at": {"type": "string"},
				"scores": {
					"type": "object",
					"required": ["health", "debt"],
					"properties": {
						"health": {"type": "number"},
						"debt": {"type": "number"},
						"metrics": {
							"type": "object",
							"additionalProperties": {"type": "number"}
						}
					}
				}
			}
		}
	}
}`

var completedJobSchemaLoader = gojsonschema.NewStringLoader(completedJobSchema)

// validateAnalysisPayload checks a completed job response against the
// payload contract.
func validateAnalysisPayload(body []byte) error {
	result, err := gojsonschema.Validate(completedJobSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: schema validation failed: %w", ErrBadResponse, err)
	}

	if !result.Valid() {
		detail := ""
		for _, desc := range result.Errors() {
			if detail != "" {
				detail += "; "
			}

			detail += desc.String()
		}

		return fmt.Errorf("%w: %s", ErrBadResponse, detail)
	}

	return nil
}
