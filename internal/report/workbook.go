package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/inspect"
)

// SheetName is the worksheet holding the report.
const SheetName = "Compliance Report"

var headers = []string{"Rule ID", "Rule Description", "Result", "Severity", "Reason", "Recommendation"}

// Fill colours
const (
	fillGreen  = "C6EFCE"
	fillRed    = "FFC7CE"
	fillGrey   = "E7E6E6"
	fillOrange = "FFD966"
)

// WriteWorkbook writes rows to an .xlsx file with a bold header row.
// Result cells are green for YES, red for NO and grey otherwise; severity
// cells are red for CRITICAL, orange for MAJOR and grey otherwise.
func WriteWorkbook(path string, rows []Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, styles.bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range rows {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{r.RuleID, r.Description, string(r.Result), string(r.Severity), r.Reason, r.Recommendation}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}

		resultCell, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellStyle(SheetName, resultCell, resultCell, styles.forResult(r.Result)); err != nil {
			return fmt.Errorf("failed to style row %d: %w", row, err)
		}
		severityCell, _ := excelize.CoordinatesToCellName(4, row)
		if err := f.SetCellStyle(SheetName, severityCell, severityCell, styles.forSeverity(r.Severity)); err != nil {
			return fmt.Errorf("failed to style row %d: %w", row, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

type workbookStyles struct {
	bold, green, red, grey, orange int
}

func (s workbookStyles) forResult(r inspect.Result) int {
	switch r {
	case inspect.ResultYes:
		return s.green
	case inspect.ResultNo:
		return s.red
	default:
		return s.grey
	}
}

func (s workbookStyles) forSeverity(sev inspect.Severity) int {
	switch sev {
	case inspect.SeverityCritical:
		return s.red
	case inspect.SeverityMajor:
		return s.orange
	default:
		return s.grey
	}
}

func newStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	for _, fill := range []struct {
		id    *int
		color string
	}{
		{&s.green, fillGreen},
		{&s.red, fillRed},
		{&s.grey, fillGrey},
		{&s.orange, fillOrange},
	} {
		*fill.id, err = f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill.color}},
		})
		if err != nil {
			return s, fmt.Errorf("failed to create style: %w", err)
		}
	}
	return s, nil
}
