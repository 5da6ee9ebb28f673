package inspect

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict is the model's answer for one rule.
type Verdict struct {
	RuleID         string `json:"rule_id"`
	Result         Result `json:"result"`
	Reason         string `json:"reason"`
	Recommendation string `json:"recommendation"`
}

// ParseVerdicts decodes the model's answer. Markdown code fences around
// the JSON are tolerated. Any other deviation fails with
// ErrInvalidResponse and the raw answer in the message.
func ParseVerdicts(text string) ([]Verdict, error) {
	raw := stripFences(text)

	var verdicts []Verdict
	if err := json.Unmarshal([]byte(raw), &verdicts); err != nil {
		return nil, fmt.Errorf("%w: %v\n%s", ErrInvalidResponse, err, text)
	}
	for i, v := range verdicts {
		if v.RuleID == "" {
			return nil, fmt.Errorf("%w: verdict %d has no rule_id\n%s", ErrInvalidResponse, i+1, text)
		}
	}
	return verdicts, nil
}

func stripFences(text string) string {
	raw := strings.TrimSpace(text)
	if strings.HasPrefix(raw, "```") {
		raw = strings.ReplaceAll(raw, "```json", "")
		raw = strings.ReplaceAll(raw, "```", "")
		raw = strings.TrimSpace(raw)
	}
	return raw
}
