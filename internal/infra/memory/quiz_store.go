package memory

import (
	"sort"
	"sync"

	"course-quiz-engine/internal/app"
	"course-quiz-engine/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]*app.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{
		quizzes: make(map[string]*app.Quiz),
	}
}

func (s *QuizStore) Add(quiz *app.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := quizKey(quiz.CourseID(), quiz.ID())
	if _, ok := s.quizzes[key]; ok {
		return domain.ErrDuplicateQuiz
	}
	s.quizzes[key] = quiz
	return nil
}

func (s *QuizStore) Get(courseID, quizID string) (*app.Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizKey(courseID, quizID)]
	return quiz, ok
}

// List returns the course's quizzes ordered by start time, then id.
func (s *QuizStore) List(courseID string) []*app.Quiz {
	s.mu.RLock()
	var out []*app.Quiz
	for _, quiz := range s.quizzes {
		if quiz.CourseID() == courseID {
			out = append(out, quiz)
		}
	}
	s.mu.RUnlock()
	SortQuizzes(out)
	return out
}

func (s *QuizStore) All() []*app.Quiz {
	s.mu.RLock()
	out := make([]*app.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		out = append(out, quiz)
	}
	s.mu.RUnlock()
	SortQuizzes(out)
	return out
}

// SortQuizzes orders quizzes by course, start time and id.
func SortQuizzes(quizzes []*app.Quiz) {
	sort.Slice(quizzes, func(i, j int) bool {
		a, b := quizzes[i].Info(), quizzes[j].Info()
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		if !a.StartsAt.Equal(b.StartsAt) {
			return a.StartsAt.Before(b.StartsAt)
		}
		return a.ID < b.ID
	})
}

func quizKey(courseID, quizID string) string {
	return courseID + "/" + quizID
}
