package domain

import "errors"

var (
	// ErrNotActive is returned when an attempt is requested outside the quiz window.
	ErrNotActive = errors.New("quiz is not currently active")
	// ErrAlreadyAttempted is returned when a student requests a second attempt.
	ErrAlreadyAttempted = errors.New("quiz already attempted")
	// ErrEmptySelection is returned when a quiz would be created with no questions.
	ErrEmptySelection = errors.New("no questions selected for the quiz")
	// ErrAttemptClosed is returned when answers are recorded after grading.
	ErrAttemptClosed = errors.New("attempt already submitted")

	ErrQuizNotFound     = errors.New("quiz not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")

	// ErrInvalidQuestion wraps question authoring failures.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidQuiz wraps quiz authoring failures other than an empty selection.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrDuplicateQuiz indicates the quiz id is already used within the course.
	ErrDuplicateQuiz = errors.New("quiz already exists")

	ErrNotInstructor = errors.New("user is not the course instructor")
	ErrNotEnrolled   = errors.New("student is not enrolled in the course")

	// ErrNoSnapshot is returned by snapshot stores that hold no saved state yet.
	ErrNoSnapshot = errors.New("no saved snapshot")
)
