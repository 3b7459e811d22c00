package redis

import (
	"context"
	"testing"
	"time"

	"course-quiz-engine/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestAdmissionGuardClaimsOnce(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	now := time.Date(2026, 3, 2, 10, 20, 0, 0, time.UTC)
	ctx := context.Background()
	info := domain.QuizInfo{
		ID:        "quiz-1",
		CourseID:  "OOPT-2002",
		TeacherID: "t1",
		StartsAt:  now.Add(-20 * time.Minute),
		Duration:  30 * time.Minute,
	}
	first := NewAdmissionGuard(newClient(mr), func() time.Time { return now })
	second := NewAdmissionGuard(newClient(mr), func() time.Time { return now })

	ok, err := first.Claim(ctx, info, "s1")
	if err != nil || !ok {
		t.Fatalf("expected first claim to succeed, got %v (err %v)", ok, err)
	}
	key := "quiz:admission:OOPT-2002:quiz-1:s1"
	if ttl := mr.TTL(key); ttl != 10*time.Minute {
		t.Fatalf("expected claim to expire at quiz close, got %v", ttl)
	}
	if ok, err := second.Claim(ctx, info, "s1"); err != nil || ok {
		t.Fatalf("expected second process to be refused, got %v (err %v)", ok, err)
	}
	if ok, _ := second.Claim(ctx, info, "s2"); !ok {
		t.Fatalf("expected another student to be admitted")
	}

	if err := first.Release(ctx, info, "s1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Claim(ctx, info, "s1"); !ok {
		t.Fatalf("expected claim after release to succeed")
	}

	mr.FastForward(11 * time.Minute)
	if mr.Exists(key) {
		t.Fatalf("expected claim to expire after the quiz closed")
	}
}
