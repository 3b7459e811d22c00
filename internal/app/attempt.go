package app

import (
	"sync"
	"time"

	"course-quiz-engine/internal/domain"
)

// Attempt is one student's submission against a quiz. Recording and grading
// are serialized by the attempt's own mutex.
type Attempt struct {
	id        string
	studentID string
	quizID    string
	startedAt time.Time
	deadline  time.Time
	questions []domain.Question
	now       func() time.Time

	mu       sync.Mutex
	answers  map[string]string
	score    int
	graded   bool
	gradedAt time.Time
}

func newAttempt(id, studentID string, info domain.QuizInfo, questions []domain.Question, now func() time.Time) *Attempt {
	started := now()
	return &Attempt{
		id:        id,
		studentID: studentID,
		quizID:    info.ID,
		startedAt: started,
		deadline:  started.Add(info.Duration),
		questions: questions,
		now:       now,
		answers:   make(map[string]string),
	}
}

func (a *Attempt) ID() string           { return a.id }
func (a *Attempt) StudentID() string    { return a.studentID }
func (a *Attempt) QuizID() string       { return a.quizID }
func (a *Attempt) StartedAt() time.Time { return a.startedAt }
func (a *Attempt) Deadline() time.Time  { return a.deadline }

// Questions returns the attempt's presentation, in the order the student sees it.
func (a *Attempt) Questions() []domain.Question {
	return domain.CloneQuestions(a.questions)
}

// Question returns this attempt's copy of a question.
func (a *Attempt) Question(questionID string) (domain.Question, bool) {
	for _, q := range a.questions {
		if q.ID == questionID {
			return q.Clone(), true
		}
	}
	return domain.Question{}, false
}

// RecordAnswer upserts the answer for questionID. The answer is stored even
// when the deadline has passed; expired reports that the caller should stop
// and submit.
func (a *Attempt) RecordAnswer(questionID, answer string) (expired bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.graded {
		return false, domain.ErrAttemptClosed
	}
	a.answers[questionID] = answer
	return !a.now().Before(a.deadline), nil
}

// Answer returns the recorded answer for questionID.
func (a *Attempt) Answer(questionID string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ans, ok := a.answers[questionID]
	return ans, ok
}

// Answers returns a copy of all recorded answers.
func (a *Attempt) Answers() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]string, len(a.answers))
	for k, v := range a.answers {
		out[k] = v
	}
	return out
}

// Expired reports whether the attempt's deadline has passed.
func (a *Attempt) Expired() bool {
	return !a.now().Before(a.deadline)
}

func (a *Attempt) Graded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.graded
}

// Grade scores the attempt once; later calls return the stored score.
func (a *Attempt) Grade() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gradeLocked()
}

// Score grades on first read.
func (a *Attempt) Score() int {
	return a.Grade()
}

func (a *Attempt) gradeLocked() int {
	if a.graded {
		return a.score
	}
	score := 0
	for _, q := range a.questions {
		if ans, ok := a.answers[q.ID]; ok && q.CheckAnswer(ans) {
			score += q.Points
		}
	}
	a.score = score
	a.graded = true
	a.gradedAt = a.now()
	return score
}

// Record returns the persisted form of the attempt.
func (a *Attempt) Record() domain.AttemptRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec := domain.AttemptRecord{
		ID:        a.id,
		StudentID: a.studentID,
		StartedAt: a.startedAt,
		Deadline:  a.deadline,
		Questions: domain.CloneQuestions(a.questions),
		Answers:   make(map[string]string, len(a.answers)),
		Score:     a.score,
		Graded:    a.graded,
	}
	for k, v := range a.answers {
		rec.Answers[k] = v
	}
	if a.graded {
		at := a.gradedAt
		rec.GradedAt = &at
	}
	return rec
}

func restoreAttempt(quizID string, rec domain.AttemptRecord, now func() time.Time) *Attempt {
	a := &Attempt{
		id:        rec.ID,
		studentID: rec.StudentID,
		quizID:    quizID,
		startedAt: rec.StartedAt,
		deadline:  rec.Deadline,
		questions: domain.CloneQuestions(rec.Questions),
		now:       now,
		answers:   make(map[string]string, len(rec.Answers)),
		score:     rec.Score,
		graded:    rec.Graded,
	}
	for k, v := range rec.Answers {
		a.answers[k] = v
	}
	if rec.GradedAt != nil {
		a.gradedAt = *rec.GradedAt
	}
	return a
}
