package parsers

import (
	"fmt"
	"strings"

	"github.com/stockpilot-poc/server/internal/agent/model"
)

type rawClassification struct {
	Intent     string   `json:"intent"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// ParseClassification parses the classifier model's JSON verdict. An intent
// value outside the known three is returned as-is: routing that to the error
// handler is the router's call, not a parse failure.
func ParseClassification(content string) (*model.IntentClassification, error) {
	s, err := extractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}

	var raw rawClassification
	if err := decodeObject(s, &raw); err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}

	intent := strings.ToLower(strings.TrimSpace(raw.Intent))
	if intent == "" {
		return nil, fmt.Errorf("classification: missing intent")
	}

	out := &model.IntentClassification{
		Intent:    model.Intent(intent),
		Reasoning: strings.TrimSpace(raw.Reasoning),
	}
	if raw.Confidence != nil {
		if !validConfidence(*raw.Confidence) {
			return nil, fmt.Errorf("classification: confidence out of range")
		}
		out.Confidence = *raw.Confidence
	}
	return out, nil
}
