package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"course-quiz-engine/internal/domain"
	"github.com/go-playground/validator/v10"
)

// QuizStore keeps live quizzes.
type QuizStore interface {
	Add(quiz *Quiz) error
	Get(courseID, quizID string) (*Quiz, bool)
	List(courseID string) []*Quiz
	All() []*Quiz
}

// CourseRepository resolves a course and its roster.
type CourseRepository interface {
	GetCourse(ctx context.Context, courseID string) (domain.Course, error)
}

// QuestionBank holds authored questions keyed by course.
type QuestionBank interface {
	Questions(ctx context.Context, courseID string) ([]domain.Question, error)
	AddQuestion(ctx context.Context, courseID string, q domain.Question) error
}

// Directory resolves user identities.
type Directory interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
}

// AdmissionGuard claims a student's single attempt in a store shared with
// other processes. Claim reports false when the student was admitted elsewhere.
type AdmissionGuard interface {
	Claim(ctx context.Context, info domain.QuizInfo, studentID string) (bool, error)
	Release(ctx context.Context, info domain.QuizInfo, studentID string) error
}

// Option configures a QuizService.
type Option func(*QuizService)

// WithClock is used by tests and by snapshot restores that need a fixed "now".
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithPresenter replaces the default randomizer. nil disables shuffling.
func WithPresenter(p Presenter) Option {
	return func(s *QuizService) { s.presenter = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

// WithAdmissionGuard makes admission also claim the attempt in guard.
func WithAdmissionGuard(guard AdmissionGuard) Option {
	return func(s *QuizService) { s.guard = guard }
}

// QuizService contains the quiz use cases: authoring, admission, answering,
// grading and reporting.
type QuizService struct {
	quizzes   QuizStore
	courses   CourseRepository
	bank      QuestionBank
	users     Directory
	now       func() time.Time
	presenter Presenter
	guard     AdmissionGuard
	logger    *slog.Logger
	validate  *validator.Validate
}

func NewQuizService(quizzes QuizStore, courses CourseRepository, bank QuestionBank, users Directory, opts ...Option) *QuizService {
	s := &QuizService{
		quizzes:   quizzes,
		courses:   courses,
		bank:      bank,
		users:     users,
		now:       time.Now,
		presenter: NewRandomizer(),
		logger:    slog.Default(),
		validate:  newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuizOptions returns the options the service applies to quizzes it creates,
// so restored quizzes behave the same way.
func (s *QuizService) QuizOptions() []QuizOption {
	return []QuizOption{WithQuizClock(s.now), WithQuizPresenter(s.presenter)}
}

// RequireInstructor loads the course and checks that teacherID teaches it.
func (s *QuizService) RequireInstructor(ctx context.Context, teacherID, courseID string) (domain.Course, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return domain.Course{}, err
	}
	if course.InstructorID != teacherID {
		return domain.Course{}, domain.ErrNotInstructor
	}
	return course, nil
}

// AuthorQuestion validates a draft and appends it to the course question bank.
func (s *QuizService) AuthorQuestion(ctx context.Context, teacherID, courseID string, draft QuestionDraft) (domain.Question, error) {
	if _, err := s.RequireInstructor(ctx, teacherID, courseID); err != nil {
		return domain.Question{}, err
	}
	q, err := s.buildQuestion(draft)
	if err != nil {
		return domain.Question{}, err
	}

	existing, err := s.bank.Questions(ctx, courseID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question bank: %w", err)
	}
	for _, e := range existing {
		if e.ID == q.ID {
			return domain.Question{}, fmt.Errorf("%w: %s: id already used in %s", domain.ErrInvalidQuestion, q.ID, courseID)
		}
	}
	if err := s.bank.AddQuestion(ctx, courseID, q); err != nil {
		return domain.Question{}, fmt.Errorf("add question: %w", err)
	}
	s.logger.Info("question authored", "course", courseID, "question", q.ID, "kind", q.Kind)
	return q, nil
}

// CreateQuiz snapshots the selected bank questions into a new scheduled quiz.
// Nothing is registered unless every check passes.
func (s *QuizService) CreateQuiz(ctx context.Context, teacherID string, draft QuizDraft) (*Quiz, error) {
	if err := s.checkQuizDraft(draft); err != nil {
		return nil, err
	}
	if _, err := s.RequireInstructor(ctx, teacherID, draft.CourseID); err != nil {
		return nil, err
	}
	if _, exists := s.quizzes.Get(draft.CourseID, draft.QuizID); exists {
		return nil, domain.ErrDuplicateQuiz
	}

	bank, err := s.bank.Questions(ctx, draft.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	selected := selectQuestions(bank, draft.Selection)
	if len(selected) == 0 {
		return nil, domain.ErrEmptySelection
	}

	quiz, err := NewQuiz(domain.QuizInfo{
		ID:        draft.QuizID,
		CourseID:  draft.CourseID,
		TeacherID: teacherID,
		StartsAt:  draft.StartsAt,
		Duration:  draft.Duration,
	}, selected, s.QuizOptions()...)
	if err != nil {
		return nil, err
	}
	if err := s.quizzes.Add(quiz); err != nil {
		return nil, err
	}
	s.logger.Info("quiz created",
		"course", draft.CourseID,
		"quiz", draft.QuizID,
		"questions", len(selected),
		"starts_at", draft.StartsAt,
		"duration", draft.Duration,
	)
	return quiz, nil
}

// Quiz looks up a registered quiz.
func (s *QuizService) Quiz(courseID, quizID string) (*Quiz, error) {
	quiz, ok := s.quizzes.Get(courseID, quizID)
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	return quiz, nil
}

// AvailableQuizzes lists the course quizzes the student has not attempted yet.
func (s *QuizService) AvailableQuizzes(ctx context.Context, courseID, studentID string) ([]domain.QuizInfo, error) {
	if _, err := s.requireEnrolled(ctx, courseID, studentID); err != nil {
		return nil, err
	}
	var out []domain.QuizInfo
	for _, quiz := range s.quizzes.List(courseID) {
		if _, attempted := quiz.Attempt(studentID); !attempted {
			out = append(out, quiz.Info())
		}
	}
	return out, nil
}

// StartAttempt admits an enrolled student into an active quiz.
func (s *QuizService) StartAttempt(ctx context.Context, courseID, quizID, studentID string) (*Attempt, error) {
	if _, err := s.requireEnrolled(ctx, courseID, studentID); err != nil {
		return nil, err
	}
	quiz, err := s.Quiz(courseID, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.claim(ctx, quiz, studentID); err != nil {
		s.logger.Info("attempt rejected", "course", courseID, "quiz", quizID, "student", studentID, "reason", err)
		return nil, err
	}
	attempt, err := quiz.RequestAttempt(studentID)
	if err != nil {
		if s.guard != nil && errors.Is(err, domain.ErrNotActive) {
			if rerr := s.guard.Release(ctx, quiz.Info(), studentID); rerr != nil {
				s.logger.Warn("release admission claim", "quiz", quizID, "student", studentID, "error", rerr)
			}
		}
		s.logger.Info("attempt rejected", "course", courseID, "quiz", quizID, "student", studentID, "reason", err)
		return nil, err
	}
	s.logger.Info("attempt started",
		"course", courseID,
		"quiz", quizID,
		"student", studentID,
		"attempt", attempt.ID(),
		"deadline", attempt.Deadline(),
	)
	return attempt, nil
}

// claim checks the local rules first so no claim is taken for a quiz that is
// not open, then claims the attempt in the shared guard.
func (s *QuizService) claim(ctx context.Context, quiz *Quiz, studentID string) error {
	if s.guard == nil {
		return nil
	}
	if !quiz.IsActive() {
		return domain.ErrNotActive
	}
	if _, ok := quiz.Attempt(studentID); ok {
		return domain.ErrAlreadyAttempted
	}
	ok, err := s.guard.Claim(ctx, quiz.Info(), studentID)
	if err != nil {
		return fmt.Errorf("claim admission: %w", err)
	}
	if !ok {
		return domain.ErrAlreadyAttempted
	}
	return nil
}

// SubmitAnswer records one answer. When the deadline has passed the attempt is
// graded on the spot and the receipt is marked auto-submitted.
func (s *QuizService) SubmitAnswer(ctx context.Context, courseID, quizID, studentID, questionID, answer string) (domain.AnswerReceipt, error) {
	attempt, err := s.attempt(courseID, quizID, studentID)
	if err != nil {
		return domain.AnswerReceipt{}, err
	}
	expired, err := attempt.RecordAnswer(questionID, answer)
	if err != nil {
		return domain.AnswerReceipt{}, err
	}
	receipt := domain.AnswerReceipt{QuestionID: questionID, Expired: expired}
	if expired {
		receipt.Score = attempt.Grade()
		receipt.AutoSubmitted = true
		s.logger.Info("attempt auto-submitted", "quiz", quizID, "student", studentID, "score", receipt.Score)
	}
	return receipt, nil
}

// Submit grades the student's attempt and returns the score.
func (s *QuizService) Submit(ctx context.Context, courseID, quizID, studentID string) (int, error) {
	attempt, err := s.attempt(courseID, quizID, studentID)
	if err != nil {
		return 0, err
	}
	score := attempt.Grade()
	s.logger.Info("attempt submitted", "quiz", quizID, "student", studentID, "score", score)
	return score, nil
}

// CloseExpired grades every ungraded attempt whose deadline has passed and
// returns how many were graded.
func (s *QuizService) CloseExpired(ctx context.Context) int {
	graded := 0
	for _, quiz := range s.quizzes.All() {
		for _, attempt := range quiz.Attempts() {
			if attempt.Graded() || !attempt.Expired() {
				continue
			}
			score := attempt.Grade()
			graded++
			s.logger.Info("expired attempt graded", "quiz", quiz.ID(), "student", attempt.StudentID(), "score", score)
		}
	}
	return graded
}

// Results lists every enrolled student with a score or as absent.
func (s *QuizService) Results(ctx context.Context, courseID, quizID string) (domain.ResultSheet, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return domain.ResultSheet{}, err
	}
	quiz, err := s.Quiz(courseID, quizID)
	if err != nil {
		return domain.ResultSheet{}, err
	}

	sheet := domain.ResultSheet{
		CourseID:    course.ID,
		CourseName:  course.Name,
		QuizID:      quiz.ID(),
		MaxScore:    quiz.MaxScore(),
		GeneratedAt: s.now(),
		Rows:        make([]domain.ResultRow, 0, len(course.StudentIDs)),
	}
	for _, studentID := range course.StudentIDs {
		name, err := s.displayName(ctx, studentID)
		if err != nil {
			return domain.ResultSheet{}, err
		}
		row := domain.ResultRow{StudentID: studentID, StudentName: name}
		if attempt, ok := quiz.Attempt(studentID); ok {
			row.Attempted = true
			row.Score = attempt.Score()
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// Analytics summarizes participation and per-question correctness.
func (s *QuizService) Analytics(ctx context.Context, courseID, quizID string) (domain.QuizAnalytics, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return domain.QuizAnalytics{}, err
	}
	quiz, err := s.Quiz(courseID, quizID)
	if err != nil {
		return domain.QuizAnalytics{}, err
	}
	return Analyze(quiz, course), nil
}

// StudentResults lists the student's scores for every attempted quiz in the course.
func (s *QuizService) StudentResults(ctx context.Context, courseID, studentID string) ([]domain.StudentScore, error) {
	if _, err := s.requireEnrolled(ctx, courseID, studentID); err != nil {
		return nil, err
	}
	var out []domain.StudentScore
	for _, quiz := range s.quizzes.List(courseID) {
		attempt, ok := quiz.Attempt(studentID)
		if !ok {
			continue
		}
		out = append(out, domain.StudentScore{
			QuizID:   quiz.ID(),
			StartsAt: quiz.Info().StartsAt,
			Score:    attempt.Score(),
			MaxScore: quiz.MaxScore(),
		})
	}
	return out, nil
}

func (s *QuizService) requireEnrolled(ctx context.Context, courseID, studentID string) (domain.Course, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return domain.Course{}, err
	}
	if !course.Enrolled(studentID) {
		return domain.Course{}, domain.ErrNotEnrolled
	}
	return course, nil
}

func (s *QuizService) attempt(courseID, quizID, studentID string) (*Attempt, error) {
	quiz, err := s.Quiz(courseID, quizID)
	if err != nil {
		return nil, err
	}
	attempt, ok := quiz.Attempt(studentID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// displayName falls back to the id for students the directory does not know.
func (s *QuizService) displayName(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return userID, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve user %s: %w", userID, err)
	}
	return user.Name, nil
}
