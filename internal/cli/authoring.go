package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"course-quiz-engine/internal/app"
	"course-quiz-engine/internal/domain"
	"github.com/spf13/cobra"
)

func newAddQuestionCmd(opts *rootOptions) *cobra.Command {
	var (
		teacher, course string
		draft           app.QuestionDraft
		kind            string
		correct         int
	)
	cmd := &cobra.Command{
		Use:   "add-question",
		Short: "Add a question to a course question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Kind = domain.QuestionKind(kind)
			if draft.Kind == domain.KindMultipleChoice {
				// options are numbered from 1 on the command line
				draft.CorrectIndex = correct - 1
			}
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				q, err := e.service.AuthorQuestion(ctx, teacher, course, draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Question %s added to %s\n", q.ID, course)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&teacher, "teacher", "", "instructor user id")
	f.StringVar(&course, "course", "", "course id")
	f.StringVar(&draft.ID, "id", "", "question id (generated when empty)")
	f.StringVar(&kind, "kind", string(domain.KindMultipleChoice), "multiple_choice, true_false or free_response")
	f.StringVar(&draft.Topic, "topic", "", "topic the question belongs to")
	f.StringVar(&draft.Prompt, "prompt", "", "question text")
	f.IntVar(&draft.Points, "points", 1, "points awarded for a correct answer")
	f.StringArrayVar(&draft.Options, "option", nil, "multiple-choice option (repeatable, in order)")
	f.IntVar(&correct, "correct", 1, "number of the correct option, starting at 1")
	f.BoolVar(&draft.CorrectValue, "answer-true", false, "true/false questions: the statement is true")
	f.StringVar(&draft.ModelAnswer, "model-answer", "", "free-response reference answer")
	_ = cmd.MarkFlagRequired("teacher")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func newQuestionsCmd(opts *rootOptions) *cobra.Command {
	var teacher, course string
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List a course question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, false, func(ctx context.Context, e *engine) error {
				if _, err := e.service.RequireInstructor(ctx, teacher, course); err != nil {
					return err
				}
				bank, err := e.catalog.Questions(ctx, course)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(bank) == 0 {
					fmt.Fprintln(out, "No questions in this course yet")
					return nil
				}
				for _, q := range bank {
					fmt.Fprintf(out, "[%s] %s (%s, %d pts)\n%s\n", q.ID, q.Topic, q.Kind, q.Points, q.Display())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&teacher, "teacher", "", "instructor user id")
	cmd.Flags().StringVar(&course, "course", "", "course id")
	_ = cmd.MarkFlagRequired("teacher")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func newCreateQuizCmd(opts *rootOptions) *cobra.Command {
	var (
		teacher string
		draft   app.QuizDraft
		start   string
	)
	cmd := &cobra.Command{
		Use:   "create-quiz",
		Short: "Schedule a quiz from the course question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			startsAt, err := parseStart(start, time.Now())
			if err != nil {
				return err
			}
			draft.StartsAt = startsAt
			return run(cmd, opts, true, func(ctx context.Context, e *engine) error {
				quiz, err := e.service.CreateQuiz(ctx, teacher, draft)
				if err != nil {
					return err
				}
				info := quiz.Info()
				fmt.Fprintf(cmd.OutOrStdout(), "Quiz %s created with %d question(s), %d points, open %s - %s\n",
					info.ID, len(quiz.Questions()), quiz.MaxScore(),
					info.StartsAt.Format(time.RFC3339), info.EndsAt().Format(time.RFC3339))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&teacher, "teacher", "", "instructor user id")
	f.StringVar(&draft.CourseID, "course", "", "course id")
	f.StringVar(&draft.QuizID, "quiz", "", "quiz id")
	f.StringVar(&start, "start", "now", `start time: "now", RFC 3339 or "2006-01-02 15:04" local time`)
	f.DurationVar(&draft.Duration, "duration", 30*time.Minute, "how long the quiz stays open")
	f.BoolVar(&draft.Selection.All, "all", false, "select every question in the bank")
	f.StringSliceVar(&draft.Selection.Topics, "topic", nil, "select every question of a topic (repeatable)")
	f.StringSliceVar(&draft.Selection.QuestionIDs, "question", nil, "select a question by id (repeatable)")
	_ = cmd.MarkFlagRequired("teacher")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}

func parseStart(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "now") {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q", raw)
	}
	return t, nil
}
