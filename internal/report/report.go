// Package report writes result and attendance sheets to files and renders
// them, plus quiz analytics, for the terminal.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"course-quiz-engine/internal/domain"
)

// Sink persists a result sheet and returns the path it wrote.
type Sink interface {
	WriteResults(sheet domain.ResultSheet) (string, error)
	WriteAttendance(sheet domain.ResultSheet) (string, error)
}

const (
	FormatText  = "txt"
	FormatExcel = "xlsx"
)

// NewSink returns the sink for format writing into dir.
func NewSink(format, dir string) (Sink, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return TextSink{Dir: dir}, nil
	case FormatExcel:
		return ExcelSink{Dir: dir}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// FileName follows <kind>_<course>_<quiz>.<ext>.
func FileName(kind string, sheet domain.ResultSheet, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", kind, sheet.CourseID, sheet.QuizID, ext)
}

func path(dir, kind string, sheet domain.ResultSheet, ext string) string {
	return filepath.Join(dir, FileName(kind, sheet, ext))
}

// BarChart draws one bar per full five percent.
func BarChart(percent int) string {
	if percent <= 0 {
		return ""
	}
	if percent > 100 {
		percent = 100
	}
	return strings.Repeat("|", percent/5)
}
