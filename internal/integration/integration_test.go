package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"course-quiz-engine/internal/app"
	"course-quiz-engine/internal/domain"
	"course-quiz-engine/internal/infra/memory"
	"course-quiz-engine/internal/infra/postgres"
	infraredis "course-quiz-engine/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestQuizSurvivesRestartEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applied, err := postgres.Migrate(ctx, pgURL)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) != 1 {
		t.Fatalf("expected one migration, got %v", applied)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	snapshots := postgres.NewSnapshotStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	clock := func() time.Time { return now }

	// First run: author, schedule and take the quiz, then persist.
	catalog := seedCatalog()
	quizzes := memory.NewQuizStore()
	guard := infraredis.NewAdmissionGuard(redisClient, clock)
	service := app.NewQuizService(quizzes, memory.NewCourseRepository(catalog, time.Minute), catalog, catalog,
		app.WithClock(clock), app.WithAdmissionGuard(guard))

	if _, err := service.AuthorQuestion(ctx, "t1", "OOPT-2002", app.QuestionDraft{
		ID:      "q1",
		Kind:    domain.KindMultipleChoice,
		Topic:   "Inheritance",
		Prompt:  "Which keyword is used for inheritance in Java?",
		Points:  5,
		Options: []string{"extends", "implements", "inherits", "derives"},
	}); err != nil {
		t.Fatalf("author: %v", err)
	}
	if _, err := service.CreateQuiz(ctx, "t1", app.QuizDraft{
		QuizID:    "quiz-1",
		CourseID:  "OOPT-2002",
		StartsAt:  now.Add(-time.Minute),
		Duration:  time.Hour,
		Selection: app.Selection{All: true},
	}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	attempt, err := service.StartAttempt(ctx, "OOPT-2002", "quiz-1", "s1")
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	q, _ := attempt.Question("q1")
	if _, err := service.SubmitAnswer(ctx, "OOPT-2002", "quiz-1", "s1", "q1", fmt.Sprint(q.CorrectIndex+1)); err != nil {
		t.Fatalf("submit answer: %v", err)
	}

	// A process that loaded the state before this attempt still sees the claim.
	staleSnap, err := app.ExportSnapshot(ctx, catalog, quizzes, now)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	staleSnap.Quizzes[0].Attempts = nil
	staleStore := memory.NewQuizStore()
	stale := app.NewQuizService(staleStore, memory.NewCourseRepository(catalog, time.Minute), catalog, catalog,
		app.WithClock(clock), app.WithAdmissionGuard(guard))
	if err := app.ImportSnapshot(ctx, staleSnap, memory.NewCatalog(), staleStore, stale.QuizOptions()...); err != nil {
		t.Fatalf("import stale state: %v", err)
	}
	if _, err := stale.StartAttempt(ctx, "OOPT-2002", "quiz-1", "s1"); !errors.Is(err, domain.ErrAlreadyAttempted) {
		t.Fatalf("expected the redis claim to refuse a second admission, got %v", err)
	}

	snap, err := app.ExportSnapshot(ctx, catalog, quizzes, now)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := snapshots.Save(ctx, snap); err != nil {
			t.Fatalf("save snapshot: %v", err)
		}
	}
	if removed, err := snapshots.Prune(ctx, 1); err != nil || removed != 2 {
		t.Fatalf("expected two pruned snapshots, got %d (err %v)", removed, err)
	}

	// Second run: rosters come from Postgres through the Redis cache.
	restoredCatalog := memory.NewCatalog()
	restoredQuizzes := memory.NewQuizStore()
	rows := postgres.NewCourseLoader(pool)
	courses := infraredis.NewCourseRepository(redisClient, rows, 5*time.Minute)
	restored := app.NewQuizService(restoredQuizzes, courses, restoredCatalog, restoredCatalog,
		app.WithClock(clock), app.WithAdmissionGuard(guard))

	loaded, err := snapshots.Load(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if err := app.ImportSnapshot(ctx, loaded, restoredCatalog, restoredQuizzes, restored.QuizOptions()...); err != nil {
		t.Fatalf("import snapshot: %v", err)
	}

	if _, err := restored.StartAttempt(ctx, "OOPT-2002", "quiz-1", "s1"); !errors.Is(err, domain.ErrAlreadyAttempted) {
		t.Fatalf("expected ErrAlreadyAttempted after restart, got %v", err)
	}
	score, err := restored.Submit(ctx, "OOPT-2002", "quiz-1", "s1")
	if err != nil || score != 5 {
		t.Fatalf("expected score 5, got %d (err %v)", score, err)
	}
	sheet, err := restored.Results(ctx, "OOPT-2002", "quiz-1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(sheet.Rows) != 2 || sheet.Rows[0].ScoreText() != "5" || sheet.Rows[1].ScoreText() != "Absent" {
		t.Fatalf("unexpected results: %+v", sheet.Rows)
	}

	// Enrolment written through to Postgres is visible once the cache entry is dropped.
	if err := restoredCatalog.Enroll("OOPT-2002", "s3"); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	course, _ := restoredCatalog.LoadCourse(ctx, "OOPT-2002")
	if err := rows.SaveCourse(ctx, course); err != nil {
		t.Fatalf("save course: %v", err)
	}
	if err := courses.Invalidate(ctx, "OOPT-2002"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := restored.StartAttempt(ctx, "OOPT-2002", "quiz-1", "s3"); err != nil {
		t.Fatalf("expected s3 to be admitted after enrolment, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedCatalog() *memory.Catalog {
	c := memory.NewCatalog()
	c.AddUser(domain.User{ID: "t1", Name: "Dr. Smith", Role: domain.RoleTeacher})
	c.AddUser(domain.User{ID: "s1", Name: "Ali Khan", Role: domain.RoleStudent})
	c.AddUser(domain.User{ID: "s2", Name: "Sara Ahmed", Role: domain.RoleStudent})
	c.AddCourse(domain.Course{
		ID:           "OOPT-2002",
		Name:         "Object Oriented Programming Theory",
		InstructorID: "t1",
		StudentIDs:   []string{"s1", "s2"},
	})
	return c
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
