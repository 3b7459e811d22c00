package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"course-quiz-engine/internal/report"
	"github.com/spf13/cobra"
)

func newQuizzesCmd(opts *rootOptions) *cobra.Command {
	var course, student string
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List quizzes a student has not attempted yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, false, func(ctx context.Context, e *engine) error {
				infos, err := e.service.AvailableQuizzes(ctx, course, student)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(infos) == 0 {
					fmt.Fprintln(out, "No quizzes available")
					return nil
				}
				now := time.Now()
				for _, info := range infos {
					fmt.Fprintf(out, "%s - %s (%s, %s)\n", info.ID, info.StartsAt.Format(time.RFC3339), info.StatusAt(now), info.Duration)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&course, "course", "", "course id")
	cmd.Flags().StringVar(&student, "student", "", "student user id")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

// newTakeCmd runs an attempt interactively, one question per input line.
// It stops asking once the deadline has passed and submits what was recorded.
func newTakeCmd(opts *rootOptions) *cobra.Command {
	var course, quizID, student string
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Attempt a quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				attempt, err := e.service.StartAttempt(ctx, course, quizID, student)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				in := bufio.NewScanner(cmd.InOrStdin())
				fmt.Fprintf(out, "Quiz %s started. Time limit ends at %s\n", quizID, attempt.Deadline().Format(time.Kitchen))

				questions := attempt.Questions()
				for i, q := range questions {
					fmt.Fprintf(out, "\nQuestion %d/%d (%d pts)\n%s", i+1, len(questions), q.Points, q.Display())
					fmt.Fprint(out, "Your answer: ")
					answer, ok := readLine(in)
					if !ok {
						fmt.Fprintln(out)
						break
					}
					receipt, err := e.service.SubmitAnswer(ctx, course, quizID, student, q.ID, answer)
					if err != nil {
						return err
					}
					if receipt.AutoSubmitted {
						fmt.Fprintln(out, "\nTime's up! Quiz submitted automatically.")
						fmt.Fprintf(out, "Your score: %d\n", receipt.Score)
						return nil
					}
				}

				quiz, err := e.service.Quiz(course, quizID)
				if err != nil {
					return err
				}
				score, err := e.service.Submit(ctx, course, quizID, student)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nQuiz submitted. Your score: %d/%d\n", score, quiz.MaxScore())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&course, "course", "", "course id")
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id")
	cmd.Flags().StringVar(&student, "student", "", "student user id")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("quiz")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func readLine(s *bufio.Scanner) (string, bool) {
	if !s.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.Text()), true
}

func newSubmitExpiredCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit-expired",
		Short: "Grade every attempt whose time limit has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				n := e.service.CloseExpired(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "%d expired attempt(s) graded\n", n)
				return nil
			})
		},
	}
}

func newMyResultsCmd(opts *rootOptions) *cobra.Command {
	var course, student string
	cmd := &cobra.Command{
		Use:   "my-results",
		Short: "Show a student's scores in a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			// reading a score grades the attempt, so the state is saved
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				scores, err := e.service.StudentResults(ctx, course, student)
				if err != nil {
					return err
				}
				if len(scores) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No attempted quizzes yet")
					return nil
				}
				return report.RenderStudentScores(cmd.OutOrStdout(), scores)
			})
		},
	}
	cmd.Flags().StringVar(&course, "course", "", "course id")
	cmd.Flags().StringVar(&student, "student", "", "student user id")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}
