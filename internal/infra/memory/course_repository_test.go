package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"course-quiz-engine/internal/domain"
)

func TestCourseRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CourseLoader: sampleCatalog(t)}
	repo := NewCourseRepository(loader, time.Minute)

	course, err := repo.GetCourse(context.Background(), "OOPT-2002")
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}
	if len(course.StudentIDs) != 2 {
		t.Fatalf("expected 2 enrolled students, got %v", course.StudentIDs)
	}

	// Mutating the returned roster must not leak into the cache.
	course.StudentIDs[0] = "mallory"

	again, err := repo.GetCourse(context.Background(), "OOPT-2002")
	if err != nil {
		t.Fatalf("get course 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if again.StudentIDs[0] != "s1" {
		t.Fatalf("cached roster was mutated: %v", again.StudentIDs)
	}
}

func TestCourseRepositoryExpiresAndInvalidates(t *testing.T) {
	catalog := sampleCatalog(t)
	loader := &countingLoader{CourseLoader: catalog}
	repo := NewCourseRepository(loader, time.Minute)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	ctx := context.Background()
	if _, err := repo.GetCourse(ctx, "OOPT-2002"); err != nil {
		t.Fatalf("get course: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := repo.GetCourse(ctx, "OOPT-2002"); err != nil {
		t.Fatalf("get course after ttl: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}

	if err := catalog.Enroll("OOPT-2002", "s3"); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	repo.Invalidate("OOPT-2002")
	course, err := repo.GetCourse(ctx, "OOPT-2002")
	if err != nil {
		t.Fatalf("get course after invalidate: %v", err)
	}
	if !course.Enrolled("s3") {
		t.Fatalf("expected fresh roster with s3, got %v", course.StudentIDs)
	}
}

func TestCourseRepositoryFollowsCatalogEdits(t *testing.T) {
	catalog := sampleCatalog(t)
	repo := NewCourseRepository(catalog, time.Hour)
	ctx := context.Background()

	if _, err := repo.GetCourse(ctx, "OOPT-2002"); err != nil {
		t.Fatalf("get course: %v", err)
	}
	if err := catalog.Enroll("OOPT-2002", "s3"); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	course, err := repo.GetCourse(ctx, "OOPT-2002")
	if err != nil {
		t.Fatalf("get course after enroll: %v", err)
	}
	if !course.Enrolled("s3") {
		t.Fatalf("expected enrolment visible before ttl, got %v", course.StudentIDs)
	}

	catalog.AddCourse(domain.Course{ID: "OOPT-2002", Name: "renamed", InstructorID: "t1"})
	if course, _ := repo.GetCourse(ctx, "OOPT-2002"); course.Name != "renamed" || len(course.StudentIDs) != 0 {
		t.Fatalf("expected replaced course, got %+v", course)
	}
}

func TestCourseRepositoryDropsLoadRacingInvalidate(t *testing.T) {
	catalog := sampleCatalog(t)
	loader := &hookLoader{CourseLoader: catalog}
	repo := NewCourseRepository(loader, time.Hour)
	ctx := context.Background()

	// the roster changes while the first load is in flight
	loader.during = func() {
		loader.during = nil
		repo.Invalidate("OOPT-2002")
	}
	if _, err := repo.GetCourse(ctx, "OOPT-2002"); err != nil {
		t.Fatalf("get course: %v", err)
	}
	if _, err := repo.GetCourse(ctx, "OOPT-2002"); err != nil {
		t.Fatalf("get course again: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("load racing an invalidation must not be cached, loader calls %d", loader.calls)
	}
	if _, err := repo.GetCourse(ctx, "OOPT-2002"); err != nil || loader.calls != 2 {
		t.Fatalf("expected cache hit after a clean load, loader calls %d (err %v)", loader.calls, err)
	}
}

func TestCourseRepositoryPropagatesLoaderErrors(t *testing.T) {
	repo := NewCourseRepository(sampleCatalog(t), time.Minute)
	_, err := repo.GetCourse(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

type countingLoader struct {
	CourseLoader
	calls int
}

func (l *countingLoader) LoadCourse(ctx context.Context, courseID string) (domain.Course, error) {
	l.calls++
	return l.CourseLoader.LoadCourse(ctx, courseID)
}

type hookLoader struct {
	CourseLoader
	during func()
	calls  int
}

func (l *hookLoader) LoadCourse(ctx context.Context, courseID string) (domain.Course, error) {
	l.calls++
	course, err := l.CourseLoader.LoadCourse(ctx, courseID)
	if l.during != nil {
		l.during()
	}
	return course, err
}

func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	c.AddUser(domain.User{ID: "t1", Name: "Dr. Smith", Role: domain.RoleTeacher})
	c.AddUser(domain.User{ID: "s1", Name: "Ali Khan", Role: domain.RoleStudent})
	c.AddUser(domain.User{ID: "s2", Name: "Sara Ahmed", Role: domain.RoleStudent})
	c.AddCourse(domain.Course{
		ID:           "OOPT-2002",
		Name:         "Object Oriented Programming Theory",
		InstructorID: "t1",
		StudentIDs:   []string{"s1", "s2"},
	})
	q, err := domain.NewTrueFalse("q2", "Polymorphism", "Method overloading is an example of runtime polymorphism.", 3, false)
	if err != nil {
		t.Fatalf("new question: %v", err)
	}
	if err := c.AddQuestion(context.Background(), "OOPT-2002", q); err != nil {
		t.Fatalf("add question: %v", err)
	}
	return c
}
