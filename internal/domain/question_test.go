package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCheckAnswerMultipleChoice(t *testing.T) {
	q, err := NewMultipleChoice("q1", "Inheritance", "Which keyword is used for inheritance in Java?", 5,
		[]string{"extends", "implements", "inherits", "derives"}, 0)
	if err != nil {
		t.Fatalf("new question: %v", err)
	}

	tests := []struct {
		answer string
		want   bool
	}{
		{"1", true},
		{" 1\n", true},
		{"2", false},
		{"4", false},
		{"0", false},
		{"5", false},
		{"-1", false},
		{"extends", false},
		{"", false},
		{"1.0", false},
	}
	for _, tt := range tests {
		if got := q.CheckAnswer(tt.answer); got != tt.want {
			t.Errorf("CheckAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestCheckAnswerTrueFalse(t *testing.T) {
	falseQ, _ := NewTrueFalse("q2", "Polymorphism", "Overloading is runtime polymorphism.", 3, false)
	trueQ, _ := NewTrueFalse("q3", "Polymorphism", "Overriding is runtime polymorphism.", 3, true)

	tests := []struct {
		name   string
		q      Question
		answer string
		want   bool
	}{
		{"false answered false", falseQ, "2", true},
		{"false answered true", falseQ, "1", false},
		{"true answered true", trueQ, "1", true},
		{"true answered false", trueQ, "2", false},
		{"out of range", trueQ, "3", false},
		{"word", trueQ, "true", false},
		{"empty", falseQ, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.CheckAnswer(tt.answer); got != tt.want {
				t.Errorf("CheckAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestCheckAnswerFreeResponseAlwaysCorrect(t *testing.T) {
	q, err := NewFreeResponse("q4", "Design", "Explain encapsulation.", 10, "Hiding state behind methods.")
	if err != nil {
		t.Fatalf("new question: %v", err)
	}
	for _, answer := range []string{"", "anything", "42"} {
		if !q.CheckAnswer(answer) {
			t.Errorf("expected free response answer %q to be accepted", answer)
		}
	}
}

func TestQuestionValidation(t *testing.T) {
	tests := []struct {
		name string
		q    Question
	}{
		{"missing id", Question{Kind: KindTrueFalse}},
		{"negative points", Question{ID: "x", Kind: KindTrueFalse, Points: -1}},
		{"no options", Question{ID: "x", Kind: KindMultipleChoice}},
		{"index too high", Question{ID: "x", Kind: KindMultipleChoice, Options: []string{"a"}, CorrectIndex: 1}},
		{"negative index", Question{ID: "x", Kind: KindMultipleChoice, Options: []string{"a"}, CorrectIndex: -1}},
		{"unknown kind", Question{ID: "x", Kind: "essay"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.q.Validate(); !errors.Is(err, ErrInvalidQuestion) {
				t.Fatalf("expected ErrInvalidQuestion, got %v", err)
			}
		})
	}

	if _, err := NewMultipleChoice("ok", "t", "p", 0, []string{"only"}, 0); err != nil {
		t.Fatalf("zero points single option should be valid: %v", err)
	}
}

func TestDisplayDoesNotMutate(t *testing.T) {
	q, _ := NewMultipleChoice("q1", "t", "Pick one", 1, []string{"a", "b"}, 1)
	out := q.Display()
	if !strings.Contains(out, "Pick one") || !strings.Contains(out, "1. a") || !strings.Contains(out, "2. b") {
		t.Fatalf("unexpected display output %q", out)
	}
	if q.CorrectIndex != 1 || q.Options[0] != "a" {
		t.Fatalf("display mutated question: %+v", q)
	}

	tf, _ := NewTrueFalse("q2", "t", "Sky is blue", 1, true)
	if out := tf.Display(); !strings.Contains(out, "1. True") || !strings.Contains(out, "2. False") {
		t.Fatalf("unexpected true/false display %q", out)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	q, _ := NewMultipleChoice("q1", "t", "p", 1, []string{"a", "b"}, 0)
	c := q.Clone()
	c.Options[0] = "changed"
	if q.Options[0] != "a" {
		t.Fatalf("clone shares options with original")
	}
}

func TestQuizWindowIsHalfOpen(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	info := QuizInfo{ID: "quiz-1", StartsAt: start, Duration: 30 * time.Minute}

	tests := []struct {
		at   time.Time
		want QuizStatus
	}{
		{start.Add(-time.Nanosecond), QuizPending},
		{start, QuizActive},
		{start.Add(29 * time.Minute), QuizActive},
		{start.Add(30*time.Minute - time.Nanosecond), QuizActive},
		{start.Add(30 * time.Minute), QuizClosed},
		{start.Add(time.Hour), QuizClosed},
	}
	for _, tt := range tests {
		if got := info.StatusAt(tt.at); got != tt.want {
			t.Errorf("StatusAt(%s) = %s, want %s", tt.at, got, tt.want)
		}
	}
}

func TestPercentagesNeverDivideByZero(t *testing.T) {
	if got := (Participation{Attempted: 1, Enrolled: 2}).Percent(); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	if got := (Participation{}).Percent(); got != 0 {
		t.Fatalf("expected 0 for empty roster, got %d", got)
	}
	if got := (QuestionStat{Correct: 0, Attempted: 0}).Percent(); got != 0 {
		t.Fatalf("expected 0 without attempts, got %d", got)
	}
	if got := (QuestionStat{Correct: 2, Attempted: 3}).Percent(); got != 66 {
		t.Fatalf("expected integer percent 66, got %d", got)
	}
}

func TestResultRowText(t *testing.T) {
	absent := ResultRow{StudentName: "Sara"}
	if absent.ScoreText() != "Absent" || absent.AttendanceText() != "Absent" {
		t.Fatalf("unexpected absent texts %q %q", absent.ScoreText(), absent.AttendanceText())
	}
	present := ResultRow{StudentName: "Ali", Attempted: true, Score: 0}
	if present.ScoreText() != "0" || present.AttendanceText() != "Present" {
		t.Fatalf("unexpected present texts %q %q", present.ScoreText(), present.AttendanceText())
	}
}
