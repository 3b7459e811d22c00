package app

import (
	"fmt"
	"time"

	"course-quiz-engine/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// QuestionDraft is the authoring input for a bank question.
type QuestionDraft struct {
	ID           string              `validate:"omitempty,max=64"`
	Kind         domain.QuestionKind `validate:"required,oneof=multiple_choice true_false free_response"`
	Topic        string              `validate:"required"`
	Prompt       string              `validate:"required"`
	Points       int                 `validate:"gte=0"`
	Options      []string            `validate:"omitempty,dive,required"`
	CorrectIndex int                 `validate:"gte=0"`
	CorrectValue bool
	ModelAnswer  string
}

// Selection chooses bank questions for a quiz. Unknown ids are skipped.
type Selection struct {
	All         bool
	Topics      []string
	QuestionIDs []string
}

// QuizDraft is the authoring input for a quiz.
type QuizDraft struct {
	QuizID    string `validate:"required,max=64"`
	CourseID  string `validate:"required"`
	StartsAt  time.Time
	Duration  time.Duration `validate:"gt=0"`
	Selection Selection
}

func newValidator() *validator.Validate {
	return validator.New()
}

func (s *QuizService) buildQuestion(draft QuestionDraft) (domain.Question, error) {
	if err := s.validate.Struct(draft); err != nil {
		return domain.Question{}, fmt.Errorf("%w: %v", domain.ErrInvalidQuestion, err)
	}
	id := draft.ID
	if id == "" {
		id = "q-" + uuid.NewString()[:8]
	}
	switch draft.Kind {
	case domain.KindMultipleChoice:
		return domain.NewMultipleChoice(id, draft.Topic, draft.Prompt, draft.Points, draft.Options, draft.CorrectIndex)
	case domain.KindTrueFalse:
		return domain.NewTrueFalse(id, draft.Topic, draft.Prompt, draft.Points, draft.CorrectValue)
	default:
		return domain.NewFreeResponse(id, draft.Topic, draft.Prompt, draft.Points, draft.ModelAnswer)
	}
}

func (s *QuizService) checkQuizDraft(draft QuizDraft) error {
	if err := s.validate.Struct(draft); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuiz, err)
	}
	if draft.StartsAt.IsZero() {
		return fmt.Errorf("%w: %s: start time is required", domain.ErrInvalidQuiz, draft.QuizID)
	}
	return nil
}

// selectQuestions keeps bank order and never selects a question twice.
func selectQuestions(bank []domain.Question, sel Selection) []domain.Question {
	if sel.All {
		return domain.CloneQuestions(bank)
	}
	topics := toSet(sel.Topics)
	ids := toSet(sel.QuestionIDs)

	var out []domain.Question
	for _, q := range bank {
		_, byTopic := topics[q.Topic]
		_, byID := ids[q.ID]
		if byTopic || byID {
			out = append(out, q.Clone())
		}
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
