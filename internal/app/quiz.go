package app

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"course-quiz-engine/internal/domain"
	"github.com/google/uuid"
)

// QuizOption configures a Quiz.
type QuizOption func(*Quiz)

// WithQuizClock allows deterministic admission and deadlines in tests.
func WithQuizClock(now func() time.Time) QuizOption {
	return func(q *Quiz) { q.now = now }
}

// WithQuizPresenter sets how each attempt's presentation is produced.
// A nil presenter keeps the authored order.
func WithQuizPresenter(p Presenter) QuizOption {
	return func(q *Quiz) { q.presenter = p }
}

// Quiz is a scheduled, ordered set of question copies plus at most one
// attempt per student. Admission is serialized by the quiz mutex.
type Quiz struct {
	info      domain.QuizInfo
	questions []domain.Question
	now       func() time.Time
	presenter Presenter

	mu       sync.RWMutex
	attempts map[string]*Attempt
}

// NewQuiz validates the schedule and question selection and returns an empty quiz.
func NewQuiz(info domain.QuizInfo, questions []domain.Question, opts ...QuizOption) (*Quiz, error) {
	if len(questions) == 0 {
		return nil, domain.ErrEmptySelection
	}
	if info.ID == "" || info.CourseID == "" {
		return nil, fmt.Errorf("%w: quiz and course ids are required", domain.ErrInvalidQuiz)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("%w: %s: duration must be positive", domain.ErrInvalidQuiz, info.ID)
	}
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("%w: %s: question %s selected twice", domain.ErrInvalidQuiz, info.ID, q.ID)
		}
		seen[q.ID] = struct{}{}
	}

	q := &Quiz{
		info:      info,
		questions: domain.CloneQuestions(questions),
		now:       time.Now,
		attempts:  make(map[string]*Attempt),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

func (q *Quiz) Info() domain.QuizInfo { return q.info }
func (q *Quiz) ID() string            { return q.info.ID }
func (q *Quiz) CourseID() string      { return q.info.CourseID }

// Questions returns copies of the quiz questions in authored order.
func (q *Quiz) Questions() []domain.Question {
	return domain.CloneQuestions(q.questions)
}

// MaxScore is the sum of all question points.
func (q *Quiz) MaxScore() int {
	return domain.TotalPoints(q.questions)
}

// Status is computed from the quiz clock.
func (q *Quiz) Status() domain.QuizStatus {
	return q.info.StatusAt(q.now())
}

func (q *Quiz) IsActive() bool {
	return q.IsActiveAt(q.now())
}

// IsActiveAt reports whether at falls inside [StartsAt, StartsAt+Duration).
func (q *Quiz) IsActiveAt(at time.Time) bool {
	return q.info.StatusAt(at) == domain.QuizActive
}

// RequestAttempt admits studentID: the quiz must be active and the student
// must not have attempted it. On success the attempt gets its own randomized
// presentation and is registered before the lock is released.
func (q *Quiz) RequestAttempt(studentID string) (*Attempt, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.IsActiveAt(q.now()) {
		return nil, domain.ErrNotActive
	}
	if _, ok := q.attempts[studentID]; ok {
		return nil, domain.ErrAlreadyAttempted
	}

	presentation := domain.CloneQuestions(q.questions)
	if q.presenter != nil {
		presentation = q.presenter.Present(q.questions)
	}
	attempt := newAttempt(uuid.NewString(), studentID, q.info, presentation, q.now)
	q.attempts[studentID] = attempt
	return attempt, nil
}

// Attempt returns the attempt registered for studentID.
func (q *Quiz) Attempt(studentID string) (*Attempt, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	a, ok := q.attempts[studentID]
	return a, ok
}

// Attempts returns all attempts ordered by student id.
func (q *Quiz) Attempts() []*Attempt {
	q.mu.RLock()
	out := make([]*Attempt, 0, len(q.attempts))
	for _, a := range q.attempts {
		out = append(out, a)
	}
	q.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].studentID < out[j].studentID })
	return out
}

func (q *Quiz) AttemptCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.attempts)
}

// Record returns the persisted form of the quiz and its attempts.
func (q *Quiz) Record() domain.QuizRecord {
	attempts := q.Attempts()
	rec := domain.QuizRecord{
		Info:      q.info,
		Questions: domain.CloneQuestions(q.questions),
		Attempts:  make([]domain.AttemptRecord, 0, len(attempts)),
	}
	for _, a := range attempts {
		rec.Attempts = append(rec.Attempts, a.Record())
	}
	return rec
}

// RestoreQuiz rebuilds a quiz from its record. Graded attempts keep their stored score.
func RestoreQuiz(rec domain.QuizRecord, opts ...QuizOption) (*Quiz, error) {
	q, err := NewQuiz(rec.Info, rec.Questions, opts...)
	if err != nil {
		return nil, err
	}
	for _, ar := range rec.Attempts {
		if _, dup := q.attempts[ar.StudentID]; dup {
			return nil, fmt.Errorf("%w: %s: two attempts for student %s", domain.ErrInvalidQuiz, rec.Info.ID, ar.StudentID)
		}
		q.attempts[ar.StudentID] = restoreAttempt(q.info.ID, ar, q.now)
	}
	return q, nil
}
