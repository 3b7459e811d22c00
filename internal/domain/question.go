package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionKind tags the variant carried by a Question.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindTrueFalse      QuestionKind = "true_false"
	KindFreeResponse   QuestionKind = "free_response"
)

// Question is one gradable item. Only the fields of its Kind are meaningful.
type Question struct {
	ID     string       `json:"id"`
	Kind   QuestionKind `json:"kind"`
	Topic  string       `json:"topic"`
	Prompt string       `json:"prompt"`
	Points int          `json:"points"`

	// multiple choice
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correctIndex,omitempty"`

	// true / false
	CorrectValue bool `json:"correctValue,omitempty"`

	// free response, informational only
	ModelAnswer string `json:"modelAnswer,omitempty"`
}

// NewMultipleChoice builds a multiple-choice question. correct is 0-based.
func NewMultipleChoice(id, topic, prompt string, points int, options []string, correct int) (Question, error) {
	q := Question{
		ID:           id,
		Kind:         KindMultipleChoice,
		Topic:        topic,
		Prompt:       prompt,
		Points:       points,
		Options:      append([]string(nil), options...),
		CorrectIndex: correct,
	}
	return q, q.Validate()
}

// NewTrueFalse builds a true/false question.
func NewTrueFalse(id, topic, prompt string, points int, correct bool) (Question, error) {
	q := Question{
		ID:           id,
		Kind:         KindTrueFalse,
		Topic:        topic,
		Prompt:       prompt,
		Points:       points,
		CorrectValue: correct,
	}
	return q, q.Validate()
}

// NewFreeResponse builds a free-response question.
func NewFreeResponse(id, topic, prompt string, points int, modelAnswer string) (Question, error) {
	q := Question{
		ID:          id,
		Kind:        KindFreeResponse,
		Topic:       topic,
		Prompt:      prompt,
		Points:      points,
		ModelAnswer: modelAnswer,
	}
	return q, q.Validate()
}

// Validate reports whether q satisfies the invariants of its kind.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if q.Points < 0 {
		return fmt.Errorf("%w: %s: negative points", ErrInvalidQuestion, q.ID)
	}
	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: %s: no options", ErrInvalidQuestion, q.ID)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: %s: correct option %d out of range", ErrInvalidQuestion, q.ID, q.CorrectIndex)
		}
	case KindTrueFalse, KindFreeResponse:
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidQuestion, q.ID, q.Kind)
	}
	return nil
}

// CheckAnswer grades a raw submitted answer. Malformed input is simply wrong.
func (q Question) CheckAnswer(submitted string) bool {
	switch q.Kind {
	case KindMultipleChoice:
		n, ok := parseChoice(submitted)
		return ok && n == q.CorrectIndex+1
	case KindTrueFalse:
		n, ok := parseChoice(submitted)
		if !ok {
			return false
		}
		return (n == 1 && q.CorrectValue) || (n == 2 && !q.CorrectValue)
	case KindFreeResponse:
		// Placeholder until manual review exists.
		return true
	}
	return false
}

// Display renders the prompt and, for choice questions, the options in their current order.
func (q Question) Display() string {
	var b strings.Builder
	b.WriteString(q.Prompt)
	b.WriteByte('\n')
	switch q.Kind {
	case KindMultipleChoice:
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
		}
	case KindTrueFalse:
		b.WriteString("1. True\n2. False\n")
	}
	return b.String()
}

// CorrectOption returns the text of the correct option of a multiple-choice question.
func (q Question) CorrectOption() (string, bool) {
	if q.Kind != KindMultipleChoice || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return "", false
	}
	return q.Options[q.CorrectIndex], true
}

// Clone returns a copy that shares no slices with q.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = append([]string(nil), q.Options...)
	}
	return c
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// TotalPoints sums the point values of qs.
func TotalPoints(qs []Question) int {
	total := 0
	for _, q := range qs {
		total += q.Points
	}
	return total
}

func parseChoice(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
