package app

import (
	"strconv"
	"testing"

	"course-quiz-engine/internal/domain"
)

func TestParticipation(t *testing.T) {
	clock := &testClock{now: quizStart}
	quiz := newTestQuiz(t, clock)
	if _, err := quiz.RequestAttempt("s1"); err != nil {
		t.Fatalf("request attempt: %v", err)
	}

	p := Participation(quiz, domain.Course{ID: "OOPT-2002", StudentIDs: []string{"s1", "s2"}})
	if p.Attempted != 1 || p.Enrolled != 2 {
		t.Fatalf("expected (1, 2), got (%d, %d)", p.Attempted, p.Enrolled)
	}
	if p.Percent() != 50 {
		t.Fatalf("expected 50%%, got %v", p.Percent())
	}

	empty := Participation(quiz, domain.Course{ID: "OOPT-2002"})
	if empty.Percent() != 0 {
		t.Fatalf("expected 0%% with no students, got %v", empty.Percent())
	}
}

func TestQuestionCorrectnessUsesEachPresentation(t *testing.T) {
	clock := &testClock{now: quizStart}
	quiz := newTestQuiz(t, clock, WithQuizPresenter(NewSeededRandomizer(11)))

	// s1 picks the correct option as presented to them, s2 answers nothing
	// for q1 and gets q2 wrong, s3 gets q2 right.
	a1, _ := quiz.RequestAttempt("s1")
	q1, _ := a1.Question("q1")
	_, _ = a1.RecordAnswer("q1", strconv.Itoa(q1.CorrectIndex+1))

	a2, _ := quiz.RequestAttempt("s2")
	_, _ = a2.RecordAnswer("q2", "1")

	a3, _ := quiz.RequestAttempt("s3")
	_, _ = a3.RecordAnswer("q2", "2")

	stats := QuestionCorrectness(quiz)
	if len(stats) != 2 || stats[0].QuestionID != "q1" || stats[1].QuestionID != "q2" {
		t.Fatalf("expected stats in authored order, got %+v", stats)
	}
	if stats[0].Correct != 1 || stats[0].Attempted != 3 {
		t.Fatalf("q1: expected 1/3, got %d/%d", stats[0].Correct, stats[0].Attempted)
	}
	if stats[1].Correct != 1 || stats[1].Attempted != 3 {
		t.Fatalf("q2: expected 1/3, got %d/%d", stats[1].Correct, stats[1].Attempted)
	}
}

func TestQuestionCorrectnessWithoutAttempts(t *testing.T) {
	clock := &testClock{now: quizStart}
	quiz := newTestQuiz(t, clock)

	for _, s := range QuestionCorrectness(quiz) {
		if s.Attempted != 0 || s.Percent() != 0 {
			t.Fatalf("expected empty stats, got %+v", s)
		}
	}
}
