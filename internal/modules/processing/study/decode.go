package study

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studykit/core/internal/pkg/apperr"
)

// decodeResult parses the model's raw reply and checks it against the shape
// the task demands. A result that validates is returned exactly as parsed,
// extra fields and all.
func decodeResult(kind TaskKind, raw string) (map[string]interface{}, error) {
	var parsed interface{}
	if err := unmarshalModelJSON(raw, &parsed); err != nil {
		return nil, err
	}

	result, ok := parsed.(map[string]interface{})
	if !ok || len(result) == 0 {
		return nil, invalidShape()
	}

	switch kind {
	case TaskSolveQuestions:
		if err := validateSolutions(result); err != nil {
			return nil, err
		}
	case TaskGenerateNotes:
		if err := validateNotes(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// unmarshalModelJSON tolerates markdown fences around the JSON even though
// the prompt forbids them, then falls back to the outermost object literal.
func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	err := json.Unmarshal([]byte(cleaned), out)
	if err == nil {
		return nil
	}

	if start := strings.Index(cleaned, "{"); start >= 0 {
		if end := strings.LastIndex(cleaned, "}"); end > start {
			if subErr := json.Unmarshal([]byte(cleaned[start:end+1]), out); subErr == nil {
				return nil
			}
		}
	}

	return apperr.New(apperr.KindInvalidJSON, fmt.Sprintf("Invalid JSON format from Gemini API: %s", err.Error()))
}

// validateSolutions requires every entry to be an object carrying string
// "question" and "solution" fields. One malformed entry rejects the whole
// result.
func validateSolutions(result map[string]interface{}) error {
	for _, value := range result {
		entry, ok := value.(map[string]interface{})
		if !ok {
			return invalidShape()
		}
		if !hasStringField(entry, "question") || !hasStringField(entry, "solution") {
			return invalidShape()
		}
	}
	return nil
}

// validateNotes requires a string "notes" field.
func validateNotes(result map[string]interface{}) error {
	if !hasStringField(result, "notes") {
		return invalidShape()
	}
	return nil
}

func hasStringField(obj map[string]interface{}, field string) bool {
	_, ok := obj[field].(string)
	return ok
}

func invalidShape() *apperr.Error {
	return apperr.New(apperr.KindInvalidShape, "Invalid response format from Gemini API")
}
