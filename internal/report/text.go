package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"course-quiz-engine/internal/domain"
)

const dateLayout = "2006-01-02"

// TextSink writes plain-text sheets.
type TextSink struct {
	Dir string
}

func (s TextSink) WriteResults(sheet domain.ResultSheet) (string, error) {
	p := path(s.Dir, "results", sheet, FormatText)
	return p, writeFile(p, func(w io.Writer) error {
		fmt.Fprintf(w, "Results for %s - Quiz: %s\n", sheet.CourseName, sheet.QuizID)
		fmt.Fprintf(w, "Date: %s\n\n", sheet.GeneratedAt.Format(dateLayout))
		return RenderResults(w, sheet)
	})
}

func (s TextSink) WriteAttendance(sheet domain.ResultSheet) (string, error) {
	p := path(s.Dir, "attendance", sheet, FormatText)
	return p, writeFile(p, func(w io.Writer) error {
		fmt.Fprintf(w, "Attendance for %s - Quiz: %s\n", sheet.CourseName, sheet.QuizID)
		fmt.Fprintf(w, "Date: %s\n\n", sheet.GeneratedAt.Format(dateLayout))
		return RenderAttendance(w, sheet)
	})
}

// RenderResults prints one row per enrolled student with the score or Absent.
func RenderResults(w io.Writer, sheet domain.ResultSheet) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Student\tScore")
	for _, row := range sheet.Rows {
		fmt.Fprintf(tw, "%s\t%s\n", row.StudentName, row.ScoreText())
	}
	return tw.Flush()
}

// RenderAttendance prints one row per enrolled student marked Present or Absent.
func RenderAttendance(w io.Writer, sheet domain.ResultSheet) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Student\tStatus")
	for _, row := range sheet.Rows {
		fmt.Fprintf(tw, "%s\t%s\n", row.StudentName, row.AttendanceText())
	}
	return tw.Flush()
}

// RenderStudentScores prints a student's own results across a course.
func RenderStudentScores(w io.Writer, scores []domain.StudentScore) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Quiz\tDate\tScore")
	for _, s := range scores {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\n", s.QuizID, s.StartsAt.Format(dateLayout), s.Score, s.MaxScore)
	}
	return tw.Flush()
}

// RenderAnalytics prints participation and a bar per question.
func RenderAnalytics(w io.Writer, a domain.QuizAnalytics) error {
	bw := bufio.NewWriter(w)
	p := a.Participation
	fmt.Fprintf(bw, "Analytics for Quiz: %s\n", a.QuizID)
	fmt.Fprintf(bw, "Participation: %d/%d (%d%%)\n", p.Attempted, p.Enrolled, p.Percent())
	fmt.Fprintln(bw, "\nQuestion-wise Performance:")
	for _, q := range a.Questions {
		fmt.Fprintf(bw, "\nQuestion: %s\n", q.Prompt)
		fmt.Fprintf(bw, "Correct: %d/%d (%d%%)\n", q.Correct, q.Attempted, q.Percent())
		fmt.Fprintln(bw, BarChart(q.Percent()))
	}
	return bw.Flush()
}

func writeFile(p string, fill func(io.Writer) error) error {
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create %s: %w", p, err)
	}
	bw := bufio.NewWriter(f)
	if err := fill(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
