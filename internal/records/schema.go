package records

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// feedbackSchema constrains the model's JSON output before it is trusted.
// All five category keys must be present and every score sits in [0,100].
// ATS tips may omit the tip text and explanation.
const feedbackSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["overallScore", "ATS", "toneAndStyle", "content", "structure", "skills"],
  "properties": {
    "overallScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "ATS": {"$ref": "#/definitions/atsCategory"},
    "toneAndStyle": {"$ref": "#/definitions/category"},
    "content": {"$ref": "#/definitions/category"},
    "structure": {"$ref": "#/definitions/category"},
    "skills": {"$ref": "#/definitions/category"}
  },
  "definitions": {
    "tipType": {"type": "string", "enum": ["positive", "improvement"]},
    "atsCategory": {
      "type": "object",
      "required": ["score", "tips"],
      "properties": {
        "score": {"type": "integer", "minimum": 0, "maximum": 100},
        "tips": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["type"],
            "properties": {
              "type": {"$ref": "#/definitions/tipType"},
              "tip": {"type": "string"},
              "explanation": {"type": "string"}
            }
          }
        }
      }
    },
    "category": {
      "type": "object",
      "required": ["score", "tips"],
      "properties": {
        "score": {"type": "integer", "minimum": 0, "maximum": 100},
        "tips": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["type", "tip", "explanation"],
            "properties": {
              "type": {"$ref": "#/definitions/tipType"},
              "tip": {"type": "string", "minLength": 1},
              "explanation": {"type": "string", "minLength": 1}
            }
          }
        }
      }
    }
  }
}`

var compiledFeedbackSchema = gojsonschema.NewStringLoader(feedbackSchema)

// ParseFeedback validates raw model output against the feedback schema and
// decodes it. The raw bytes are rejected before unmarshal so a shape
// violation never yields a half-populated Feedback.
func ParseFeedback(raw []byte) (*Feedback, error) {
	result, err := gojsonschema.Validate(compiledFeedbackSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("records: validate feedback: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for i, desc := range result.Errors() {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(desc.String())
		}
		return nil, fmt.Errorf("records: feedback schema violation: %s", sb.String())
	}

	var fb Feedback
	if err := json.Unmarshal(raw, &fb); err != nil {
		return nil, fmt.Errorf("records: decode feedback: %w", err)
	}
	return &fb, nil
}
