// Package report turns inspection verdicts into a colour-coded Excel
// workbook and a machine-readable summary.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/inspect"
)

// Risk is the overall risk of a drawing.
type Risk string

const (
	RiskHigh   Risk = "HIGH"
	RiskMedium Risk = "MEDIUM"
	RiskLow    Risk = "LOW"
)

// SummaryFile is the summary's file name inside a run directory.
const SummaryFile = "summary.json"

// Row is one line of the compliance report.
type Row struct {
	RuleID         string
	Description    string
	Result         inspect.Result
	Severity       inspect.Severity
	Reason         string
	Recommendation string
}

// BuildRows joins verdicts with their rule metadata, in verdict order.
// Verdicts for rules missing from the checklist keep an empty description
// and are ranked as uncategorised.
func BuildRows(verdicts []inspect.Verdict, rules []inspect.Rule) []Row {
	byID := make(map[string]inspect.Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}

	rows := make([]Row, 0, len(verdicts))
	for _, v := range verdicts {
		meta := byID[v.RuleID]
		rows = append(rows, Row{
			RuleID:         v.RuleID,
			Description:    meta.Description,
			Result:         v.Result,
			Severity:       inspect.SeverityFor(meta.Category, v.Result),
			Reason:         v.Reason,
			Recommendation: v.Recommendation,
		})
	}
	return rows
}

// Issue is a failed rule in the summary.
type Issue struct {
	RuleID         string `json:"rule_id"`
	Reason         string `json:"reason"`
	Recommendation string `json:"recommendation"`
}

// Summary aggregates a report.
type Summary struct {
	TotalRules        int     `json:"total_rules"`
	ApplicableRules   int     `json:"applicable_rules"`
	Passed            int     `json:"passed"`
	Failed            int     `json:"failed"`
	NotApplicable     int     `json:"not_applicable"`
	CompliancePercent float64 `json:"compliance_percent"`
	CriticalIssues    int     `json:"critical_issues"`
	MajorIssues       int     `json:"major_issues"`
	OverallRisk       Risk    `json:"overall_risk"`
	Issues            []Issue `json:"issues"`
}

// Summarize counts the rows.
//
// Applicable rules are the passed plus the failed ones; compliance is the
// passed share of those, in percent rounded to one decimal, and 0 when
// nothing applies. Risk is HIGH with any critical issue, MEDIUM with any
// major issue, LOW otherwise.
func Summarize(rows []Row) Summary {
	s := Summary{TotalRules: len(rows), Issues: make([]Issue, 0)}

	for _, r := range rows {
		switch r.Result {
		case inspect.ResultYes:
			s.Passed++
		case inspect.ResultNo:
			s.Failed++
			s.Issues = append(s.Issues, Issue{RuleID: r.RuleID, Reason: r.Reason, Recommendation: r.Recommendation})
		case inspect.ResultNotApplicable:
			s.NotApplicable++
		}

		switch r.Severity {
		case inspect.SeverityCritical:
			s.CriticalIssues++
		case inspect.SeverityMajor:
			s.MajorIssues++
		}
	}

	s.ApplicableRules = s.Passed + s.Failed
	if s.ApplicableRules > 0 {
		s.CompliancePercent = math.Round(float64(s.Passed)/float64(s.ApplicableRules)*1000) / 10
	}

	switch {
	case s.CriticalIssues > 0:
		s.OverallRisk = RiskHigh
	case s.MajorIssues > 0:
		s.OverallRisk = RiskMedium
	default:
		s.OverallRisk = RiskLow
	}
	return s
}

// WriteSummary writes s as indented JSON.
func WriteSummary(path string, s Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// Output locates the files written by Write.
type Output struct {
	ExcelName   string  `json:"excel_name"`
	ExcelPath   string  `json:"excel_path"`
	SummaryPath string  `json:"summary_path"`
	Summary     Summary `json:"summary"`
}

// Write builds the report for verdicts and writes <stem>.xlsx and
// summary.json into dir, creating it if needed.
func Write(dir, stem string, verdicts []inspect.Verdict, rules []inspect.Rule) (*Output, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	rows := BuildRows(verdicts, rules)
	out := &Output{
		ExcelName:   stem + ".xlsx",
		SummaryPath: filepath.Join(dir, SummaryFile),
		Summary:     Summarize(rows),
	}
	out.ExcelPath = filepath.Join(dir, out.ExcelName)

	if err := WriteWorkbook(out.ExcelPath, rows); err != nil {
		return nil, err
	}
	if err := WriteSummary(out.SummaryPath, out.Summary); err != nil {
		return nil, err
	}
	return out, nil
}
