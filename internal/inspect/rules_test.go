package inspect

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadChecklist(t *testing.T) {
	path := writeFile(t, "checklist.json", `{
  "rules": [
    {"id": "R1", "description": "Datum features are identified", "category": "DATUM"},
    {"id": "R2", "description": "Basic dimensions are boxed", "category": "GENERAL_GDT"}
  ]
}`)

	rules, err := LoadChecklist(path)
	if err != nil {
		t.Fatalf("LoadChecklist failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules: got %d, want 2", len(rules))
	}
	if rules[1].ID != "R2" || rules[1].Category != "GENERAL_GDT" {
		t.Errorf("rule 2: got %+v", rules[1])
	}
}

func TestLoadChecklist_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIs  error
	}{
		{"empty list", `{"rules": []}`, ErrNoRules},
		{"no rules key", `{}`, ErrNoRules},
		{"not json", `rules: [R1]`, nil},
		{"missing id", `{"rules": [{"description": "x"}]}`, nil},
		{"duplicate id", `{"rules": [{"id": "R1"}, {"id": "R1"}]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadChecklist(writeFile(t, "checklist.json", tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error: got %v, want %v", err, tt.wantIs)
			}
		})
	}

	if _, err := LoadChecklist(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v, want ErrNotExist", err)
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		category string
		result   Result
		want     Severity
	}{
		{"DATUM", ResultNo, SeverityCritical},
		{"FCF", ResultNo, SeverityCritical},
		{"TOLERANCE", ResultNo, SeverityCritical},
		{"GENERAL_GDT", ResultNo, SeverityMajor},
		{"DIMENSIONING", ResultNo, SeverityMajor},
		{"TITLE", ResultNo, SeverityMinor},
		{"", ResultNo, SeverityMinor},
		{"DATUM", ResultYes, SeverityNone},
		{"DATUM", ResultNotApplicable, SeverityNone},
		{"FCF", Result("MAYBE"), SeverityNone},
	}

	for _, tt := range tests {
		t.Run(tt.category+"_"+string(tt.result), func(t *testing.T) {
			if got := SeverityFor(tt.category, tt.result); got != tt.want {
				t.Errorf("SeverityFor: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseVerdicts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain", validAnswer, 3},
		{"json fence", "```json\n" + validAnswer + "\n```", 3},
		{"bare fence", "```\n" + validAnswer + "\n```", 3},
		{"surrounding space", "\n\n  " + validAnswer + "  \n", 3},
		{"empty list", "[]", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdicts, err := ParseVerdicts(tt.input)
			if err != nil {
				t.Fatalf("ParseVerdicts failed: %v", err)
			}
			if len(verdicts) != tt.want {
				t.Errorf("verdicts: got %d, want %d", len(verdicts), tt.want)
			}
		})
	}
}

func TestParseVerdicts_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"prose", "All rules pass."},
		{"object", `{"rule_id": "R1", "result": "YES"}`},
		{"truncated", `[{"rule_id": "R1", "result": "YES"`},
		{"missing rule id", `[{"result": "YES"}]`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseVerdicts(tt.input); !errors.Is(err, ErrInvalidResponse) {
				t.Errorf("error: got %v, want ErrInvalidResponse", err)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(nil, testRules)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}
	if prompt[0] == '\n' {
		t.Error("prompt should not start with a blank line")
	}
	for _, want := range []string{"Block metadata:\n[]", `"category": "DIMENSIONING"`, "Return STRICT JSON ONLY"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
