package cli

import (
	"context"
	"fmt"

	"course-quiz-engine/internal/domain"
	"course-quiz-engine/internal/report"
	"github.com/spf13/cobra"
)

type reportFlags struct {
	teacher, course, quiz string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.teacher, "teacher", "", "instructor user id")
	cmd.Flags().StringVar(&f.course, "course", "", "course id")
	cmd.Flags().StringVar(&f.quiz, "quiz", "", "quiz id")
	_ = cmd.MarkFlagRequired("teacher")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("quiz")
}

// sheet checks the instructor and builds the result sheet. Building it grades
// any attempt that was not graded yet.
func (f *reportFlags) sheet(ctx context.Context, e *engine) (domain.ResultSheet, error) {
	if _, err := e.service.RequireInstructor(ctx, f.teacher, f.course); err != nil {
		return domain.ResultSheet{}, err
	}
	return e.service.Results(ctx, f.course, f.quiz)
}

func newResultsCmd(opts *rootOptions) *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show quiz results and save them to a report file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				sheet, err := flags.sheet(ctx, e)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Results for Quiz: %s (max %d)\n", sheet.QuizID, sheet.MaxScore)
				if err := report.RenderResults(out, sheet); err != nil {
					return err
				}
				return writeReport(cmd, e, func(s report.Sink) (string, error) { return s.WriteResults(sheet) })
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newAttendanceCmd(opts *rootOptions) *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Show quiz attendance and save it to a report file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				sheet, err := flags.sheet(ctx, e)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Attendance for Quiz: %s\n", sheet.QuizID)
				if err := report.RenderAttendance(out, sheet); err != nil {
					return err
				}
				return writeReport(cmd, e, func(s report.Sink) (string, error) { return s.WriteAttendance(sheet) })
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newAnalyticsCmd(opts *rootOptions) *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show participation and per-question correctness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, false, func(ctx context.Context, e *engine) error {
				if _, err := e.service.RequireInstructor(ctx, flags.teacher, flags.course); err != nil {
					return err
				}
				a, err := e.service.Analytics(ctx, flags.course, flags.quiz)
				if err != nil {
					return err
				}
				return report.RenderAnalytics(cmd.OutOrStdout(), a)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func writeReport(cmd *cobra.Command, e *engine, write func(report.Sink) (string, error)) error {
	sink, err := report.NewSink(e.cfg.Reports.Format, e.cfg.Reports.Dir)
	if err != nil {
		return err
	}
	p, err := write(sink)
	if err != nil {
		return err
	}
	e.logger.Info("report written", "path", p)
	fmt.Fprintf(cmd.OutOrStdout(), "Saved to file: %s\n", p)
	return nil
}
