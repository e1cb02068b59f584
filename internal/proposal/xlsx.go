package proposal

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the spreadsheet export writes to.
const SheetName = "Proposal"

// WriteXLSX renders p as a single-sheet Excel workbook. Amounts are written as
// numbers so the sheet can be recalculated.
func WriteXLSX(w io.Writer, p Proposal) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	req := p.Request
	rows := [][]any{
		{Letterhead},
		{"Custom Tuition Package Proposal"},
		{"Reference", p.ID},
		{"Generated on", p.GeneratedDate()},
		{},
		{"Student Name", req.StudentName},
		{"Grade Level", req.GradeLevel},
		{"Curriculum", req.Curriculum},
		{"Location", req.Location},
		{"Start Date", req.StartDate.Format("2006-01-02")},
		{"Preferred Days", p.PreferredDaysLabel()},
		{},
		{"Package Type", p.Package.Name},
		{"Days per Week", p.Package.Days},
		{"Rate per Hour", p.Package.Rate.InexactFloat64()},
		{"Session Duration (hours)", p.Cost.SessionHours.InexactFloat64()},
		{"Description", p.Package.Description},
		{},
		{"Subject", "Frequency", "Weekly Cost"},
	}
	for _, s := range p.Cost.PerSubjectCost {
		rows = append(rows, []any{s.Name, fmt.Sprintf("%d days/week", s.DaysPerWeek), s.Cost.InexactFloat64()})
	}
	rows = append(rows,
		[]any{},
		[]any{"Weekly Tuition Cost", "", p.Cost.WeeklyCost.InexactFloat64()},
		[]any{"Service & Confirmation Fee", "", p.Cost.ServiceFee.InexactFloat64()},
		[]any{"First Week Total", "", p.Cost.FirstWeekCost.InexactFloat64()},
		[]any{"Subsequent Weekly Payments", "", p.Cost.WeeklyCost.InexactFloat64()},
	)

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 30); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "C", 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
