// Package inspect evaluates a GD&T rule checklist against the segmented
// blocks of a drawing with a vision-capable language model.
//
// The model receives one prompt describing the blocks and the rules, plus
// one PNG per block, and answers with a JSON verdict per rule. Transient
// server errors are retried with exponential backoff; anything else fails
// the inspection.
package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrInvalidResponse is returned when the model's answer is not a JSON
	// list of verdicts.
	ErrInvalidResponse = errors.New("model response is not valid verdict JSON")

	// ErrNoBlocks is returned when a directory has no block images to
	// inspect.
	ErrNoBlocks = errors.New("no block images to inspect")

	// ErrNoRules is returned for an empty checklist.
	ErrNoRules = errors.New("checklist has no rules")
)

// Rule is one checklist entry.
type Rule struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Checklist is the on-disk checklist format.
type Checklist struct {
	Rules []Rule `json:"rules"`
}

// LoadChecklist reads a checklist file of the form {"rules": [...]}.
func LoadChecklist(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist: %w", err)
	}

	var c Checklist
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse checklist %s: %w", path, err)
	}
	if len(c.Rules) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRules, path)
	}

	seen := make(map[string]bool, len(c.Rules))
	for i, r := range c.Rules {
		if strings.TrimSpace(r.ID) == "" {
			return nil, fmt.Errorf("checklist rule %d has no id", i+1)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("checklist rule %s is listed twice", r.ID)
		}
		seen[r.ID] = true
	}
	return c.Rules, nil
}

// Result is a rule verdict.
type Result string

const (
	ResultYes           Result = "YES"
	ResultNo            Result = "NO"
	ResultNotApplicable Result = "NOT_APPLICABLE"
)

// Severity ranks a failed rule.
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
)

// SeverityFor ranks a verdict by its rule category. Only failed rules have
// a severity: datum, feature control frame and tolerance rules are
// critical, general GD&T and dimensioning rules are major, the rest minor.
func SeverityFor(category string, r Result) Severity {
	if r != ResultNo {
		return SeverityNone
	}
	switch category {
	case "DATUM", "FCF", "TOLERANCE":
		return SeverityCritical
	case "GENERAL_GDT", "DIMENSIONING":
		return SeverityMajor
	default:
		return SeverityMinor
	}
}
