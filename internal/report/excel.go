package report

import (
	"fmt"

	"course-quiz-engine/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ExcelSink writes sheets as .xlsx workbooks.
type ExcelSink struct {
	Dir string
}

func (s ExcelSink) WriteResults(sheet domain.ResultSheet) (string, error) {
	p := path(s.Dir, "results", sheet, FormatExcel)
	return p, writeWorkbook(p, "Results", sheet, []string{"Student ID", "Student", "Score", "Max Score"},
		func(row domain.ResultRow) []interface{} {
			return []interface{}{row.StudentID, row.StudentName, scoreCell(row), sheet.MaxScore}
		})
}

func (s ExcelSink) WriteAttendance(sheet domain.ResultSheet) (string, error) {
	p := path(s.Dir, "attendance", sheet, FormatExcel)
	return p, writeWorkbook(p, "Attendance", sheet, []string{"Student ID", "Student", "Status"},
		func(row domain.ResultRow) []interface{} {
			return []interface{}{row.StudentID, row.StudentName, row.AttendanceText()}
		})
}

// scoreCell keeps attempted scores numeric so the sheet can be summed.
func scoreCell(row domain.ResultRow) interface{} {
	if row.Attempted {
		return row.Score
	}
	return row.ScoreText()
}

func writeWorkbook(p, name string, sheet domain.ResultSheet, header []string, cells func(domain.ResultRow) []interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	title := fmt.Sprintf("%s for %s - Quiz: %s", name, sheet.CourseName, sheet.QuizID)
	if err := f.SetCellValue(name, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellValue(name, "A2", "Date: "+sheet.GeneratedAt.Format(dateLayout)); err != nil {
		return err
	}

	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(name, "A4", &head); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHead, err := excelize.CoordinatesToCellName(len(header), 4)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A4", lastHead, bold); err != nil {
		return err
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, 5+i)
		if err != nil {
			return err
		}
		values := cells(row)
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SaveAs(p); err != nil {
		return fmt.Errorf("save %s: %w", p, err)
	}
	return nil
}
