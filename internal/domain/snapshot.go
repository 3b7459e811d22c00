package domain

import "time"

// SnapshotVersion is bumped whenever the snapshot layout changes incompatibly.
const SnapshotVersion = 1

// Snapshot is the whole engine state in a serialization-friendly form.
type Snapshot struct {
	Version int          `json:"version"`
	TakenAt time.Time    `json:"takenAt"`
	Catalog Catalog      `json:"catalog"`
	Quizzes []QuizRecord `json:"quizzes"`
}

// Catalog groups the collaborator-owned state: users, courses and question banks.
type Catalog struct {
	Users         []User                `json:"users"`
	Courses       []Course              `json:"courses"`
	QuestionBanks map[string][]Question `json:"questionBanks"`
}

// QuizRecord is a quiz together with its attempts.
type QuizRecord struct {
	Info      QuizInfo        `json:"info"`
	Questions []Question      `json:"questions"`
	Attempts  []AttemptRecord `json:"attempts"`
}

// AttemptRecord is the persisted form of an attempt.
type AttemptRecord struct {
	ID        string            `json:"id"`
	StudentID string            `json:"studentId"`
	StartedAt time.Time         `json:"startedAt"`
	Deadline  time.Time         `json:"deadline"`
	Questions []Question        `json:"questions"`
	Answers   map[string]string `json:"answers"`
	Score     int               `json:"score"`
	Graded    bool              `json:"graded"`
	GradedAt  *time.Time        `json:"gradedAt,omitempty"`
}
