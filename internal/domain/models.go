package domain

import (
	"strconv"
	"time"
)

// Role distinguishes authoring users from attempting users.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// User is the identity reference handed out by the directory.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Course owns the roster; StudentIDs keep enrolment order.
type Course struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	InstructorID string   `json:"instructorId"`
	StudentIDs   []string `json:"studentIds"`
}

// Enrolled reports whether studentID is on the roster.
func (c Course) Enrolled(studentID string) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// QuizStatus is derived from the clock, never stored.
type QuizStatus string

const (
	QuizPending QuizStatus = "pending"
	QuizActive  QuizStatus = "active"
	QuizClosed  QuizStatus = "closed"
)

// QuizInfo carries the immutable scheduling attributes of a quiz.
type QuizInfo struct {
	ID        string        `json:"id"`
	CourseID  string        `json:"courseId"`
	TeacherID string        `json:"teacherId"`
	StartsAt  time.Time     `json:"startsAt"`
	Duration  time.Duration `json:"duration"`
}

// EndsAt is the first instant the quiz is closed.
func (i QuizInfo) EndsAt() time.Time {
	return i.StartsAt.Add(i.Duration)
}

// StatusAt places at relative to the half-open window [StartsAt, EndsAt).
func (i QuizInfo) StatusAt(at time.Time) QuizStatus {
	switch {
	case at.Before(i.StartsAt):
		return QuizPending
	case at.Before(i.EndsAt()):
		return QuizActive
	default:
		return QuizClosed
	}
}

// Participation is the attempted/enrolled pair for one quiz.
type Participation struct {
	Attempted int `json:"attempted"`
	Enrolled  int `json:"enrolled"`
}

// Percent is 0 when nobody is enrolled.
func (p Participation) Percent() int {
	return percent(p.Attempted, p.Enrolled)
}

// QuestionStat counts correct answers for one question over all attempts.
type QuestionStat struct {
	QuestionID string `json:"questionId"`
	Prompt     string `json:"prompt"`
	Correct    int    `json:"correct"`
	Attempted  int    `json:"attempted"`
}

// Percent is 0 when there are no attempts.
func (s QuestionStat) Percent() int {
	return percent(s.Correct, s.Attempted)
}

// QuizAnalytics is the rendering-ready summary of a quiz.
type QuizAnalytics struct {
	CourseID      string         `json:"courseId"`
	QuizID        string         `json:"quizId"`
	Participation Participation  `json:"participation"`
	Questions     []QuestionStat `json:"questions"`
}

// ResultRow is one enrolled student's line on a result or attendance sheet.
type ResultRow struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Attempted   bool   `json:"attempted"`
	Score       int    `json:"score"`
}

// ScoreText is the score, or "Absent" when no attempt exists.
func (r ResultRow) ScoreText() string {
	if !r.Attempted {
		return "Absent"
	}
	return strconv.Itoa(r.Score)
}

// AttendanceText is "Present" or "Absent".
func (r ResultRow) AttendanceText() string {
	if r.Attempted {
		return "Present"
	}
	return "Absent"
}

// ResultSheet lists every enrolled student for one quiz.
type ResultSheet struct {
	CourseID    string      `json:"courseId"`
	CourseName  string      `json:"courseName"`
	QuizID      string      `json:"quizId"`
	MaxScore    int         `json:"maxScore"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Rows        []ResultRow `json:"rows"`
}

// StudentScore is one of a student's own quiz results.
type StudentScore struct {
	QuizID   string    `json:"quizId"`
	StartsAt time.Time `json:"startsAt"`
	Score    int       `json:"score"`
	MaxScore int       `json:"maxScore"`
}

// AnswerReceipt is returned after recording an answer.
type AnswerReceipt struct {
	QuestionID    string `json:"questionId"`
	Expired       bool   `json:"expired"`
	AutoSubmitted bool   `json:"autoSubmitted"`
	Score         int    `json:"score"`
}

func percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return num * 100 / den
}
