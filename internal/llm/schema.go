package llm

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed feedback_schema.json
var feedbackSchema string

var feedbackSchemaLoader = gojsonschema.NewStringLoader(feedbackSchema)

// ValidateFeedbackJSON checks raw model output against the feedback schema.
func ValidateFeedbackJSON(doc string) error {
	res, err := gojsonschema.Validate(feedbackSchemaLoader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("parse feedback json: %w", err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("feedback does not match schema: %s", strings.Join(msgs, "; "))
}

// CleanJson strips markdown code fences around a JSON answer.
func CleanJson(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	// 앞뒤 설명문이 붙은 경우 첫 '{' ~ 마지막 '}' 만 사용
	if !strings.HasPrefix(clean, "{") {
		start := strings.Index(clean, "{")
		end := strings.LastIndex(clean, "}")
		if start >= 0 && end > start {
			clean = clean[start : end+1]
		}
	}
	return clean
}
