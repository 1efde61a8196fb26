package quiz

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/quizwise/internal/llm"
)

// batchSchema is the structural contract for a generated question batch.
// Extra keys (an "explanation", say) are tolerated.
var batchSchema = &llm.Schema{
	Name: "quiz-batch",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":     "object",
			"required": []any{"question", "options", "correctAnswer"},
			"properties": map[string]any{
				"question": map[string]any{"type": "string", "minLength": 1},
				"options": map[string]any{
					"type":     "array",
					"minItems": 2,
					"items":    map[string]any{"type": "string"},
				},
				"correctAnswer": map[string]any{"type": "string"},
			},
		},
	},
}

// ParseQuestions decodes and validates an already repaired batch. Any bad
// item rejects the whole batch with *ErrProviderFormat.
func ParseQuestions(text string) ([]Question, error) {
	if err := llm.ValidateJSON(batchSchema, json.RawMessage(text)); err != nil {
		return nil, &ErrProviderFormat{Raw: text, Reason: "batch does not match question schema", Err: err}
	}

	var questions []Question
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, &ErrProviderFormat{Raw: text, Reason: "decode questions", Err: err}
	}

	if err := validateQuestions(questions); err != nil {
		return nil, &ErrProviderFormat{Raw: text, Reason: err.Error()}
	}
	return questions, nil
}

// validateQuestions enforces the semantic rules the schema can't express.
func validateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("empty question batch")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("question %d: blank prompt", i+1)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: need at least 2 options, got %d", i+1, len(q.Options))
		}
		seen := make(map[string]struct{}, len(q.Options))
		found := false
		for _, opt := range q.Options {
			if _, dup := seen[opt]; dup {
				return fmt.Errorf("question %d: duplicate option %q", i+1, opt)
			}
			seen[opt] = struct{}{}
			if opt == q.CorrectAnswer {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("question %d: correct answer %q is not one of the options", i+1, q.CorrectAnswer)
		}
	}
	return nil
}
