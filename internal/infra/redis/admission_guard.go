package redis

import (
	"context"
	"time"

	"course-quiz-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AdmissionGuard claims a student's single attempt in Redis so that two
// processes working from the same snapshot cannot both admit the student.
// A claim is stored as:  SET quiz:admission:{courseID}:{quizID}:{studentID} {startedAt} NX
// and expires when the quiz window closes, after which no admission is possible anyway.
type AdmissionGuard struct {
	client *redis.Client
	clock  func() time.Time
}

func NewAdmissionGuard(client *redis.Client, clock func() time.Time) *AdmissionGuard {
	if clock == nil {
		clock = time.Now
	}
	return &AdmissionGuard{client: client, clock: clock}
}

// Claim reports false when the student was already admitted elsewhere.
func (g *AdmissionGuard) Claim(ctx context.Context, info domain.QuizInfo, studentID string) (bool, error) {
	now := g.clock()
	ttl := info.EndsAt().Sub(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	return g.client.SetNX(ctx, g.key(info, studentID), now.UTC().Format(time.RFC3339), ttl).Result()
}

// Release drops a claim whose admission did not go through.
func (g *AdmissionGuard) Release(ctx context.Context, info domain.QuizInfo, studentID string) error {
	return g.client.Del(ctx, g.key(info, studentID)).Err()
}

func (g *AdmissionGuard) key(info domain.QuizInfo, studentID string) string {
	return "quiz:admission:" + info.CourseID + ":" + info.ID + ":" + studentID
}
