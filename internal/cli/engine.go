package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"course-quiz-engine/internal/app"
	"course-quiz-engine/internal/config"
	"course-quiz-engine/internal/domain"
	"course-quiz-engine/internal/infra/memory"
	"course-quiz-engine/internal/infra/postgres"
	infraredis "course-quiz-engine/internal/infra/redis"
	"course-quiz-engine/internal/infra/sqlite"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// engine wires the service to the configured stores for one command run.
// State is loaded from the latest snapshot on open and saved by commit.
type engine struct {
	cfg       config.Config
	logger    *slog.Logger
	catalog   *memory.Catalog
	quizzes   *memory.QuizStore
	service   *app.QuizService
	snapshots app.SnapshotStore
	// restoring suppresses roster sync while the snapshot is loaded: Postgres
	// course rows are saved with the snapshot and caches still hold the same rosters.
	restoring bool
	// syncErr keeps the first failure of a roster write-through; commit reports it.
	syncErr   error
	closers   []func()
}

// snapshotPruner is implemented by stores that can drop old snapshots.
type snapshotPruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

func openEngine(ctx context.Context, cfg config.Config) (*engine, error) {
	e := &engine{
		cfg:     cfg,
		logger:  slog.Default(),
		catalog: memory.NewCatalog(),
		quizzes: memory.NewQuizStore(),
	}

	// rosters are loaded from the catalog unless Postgres holds the course rows
	var loader memory.CourseLoader = e.catalog
	var courseRows *postgres.CourseLoader
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if _, err := postgres.Migrate(ctx, cfg.Storage.Postgres.URL); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Storage.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		e.closers = append(e.closers, pool.Close)
		e.snapshots = postgres.NewSnapshotStore(pool)
		courseRows = postgres.NewCourseLoader(pool)
		loader = courseRows
	default:
		store, err := sqlite.New(ctx, cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, func() { _ = store.Close() })
		e.snapshots = store
	}

	rosterTTL := config.TTLDuration(cfg.Roster.TTL, 10*time.Minute)
	var courses app.CourseRepository
	var invalidate func(ctx context.Context, courseID string) error
	var guard app.AdmissionGuard
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		e.closers = append(e.closers, func() { _ = client.Close() })
		repo := infraredis.NewCourseRepository(client, loader, config.TTLDuration(cfg.Redis.TTL, rosterTTL))
		courses = repo
		invalidate = repo.Invalidate
		guard = infraredis.NewAdmissionGuard(client, time.Now)
	} else {
		repo := memory.NewCourseRepository(loader, rosterTTL)
		courses = repo
		invalidate = func(_ context.Context, courseID string) error {
			repo.Invalidate(courseID)
			return nil
		}
	}
	e.catalog.OnRosterChange(func(courseID string) {
		e.syncRoster(ctx, courseRows, invalidate, courseID)
	})

	var presenter app.Presenter
	if cfg.Quiz.Shuffle {
		presenter = app.NewRandomizer()
	}
	opts := []app.Option{
		app.WithPresenter(presenter),
		app.WithLogger(e.logger),
	}
	if guard != nil {
		opts = append(opts, app.WithAdmissionGuard(guard))
	}
	e.service = app.NewQuizService(e.quizzes, courses, e.catalog, e.catalog, opts...)

	if err := e.restore(ctx); err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

// syncRoster pushes a changed course to Postgres, when that holds the course
// rows, and then drops the cached roster.
func (e *engine) syncRoster(ctx context.Context, rows *postgres.CourseLoader, invalidate func(context.Context, string) error, courseID string) {
	if e.restoring {
		return
	}
	if rows != nil {
		if course, err := e.catalog.LoadCourse(ctx, courseID); err == nil {
			if err := rows.SaveCourse(ctx, course); err != nil {
				e.recordSyncErr(fmt.Errorf("write course %s: %w", courseID, err))
			}
		}
	}
	if err := invalidate(ctx, courseID); err != nil {
		e.recordSyncErr(fmt.Errorf("invalidate roster %s: %w", courseID, err))
	}
}

func (e *engine) recordSyncErr(err error) {
	e.logger.Error("roster sync", "error", err)
	if e.syncErr == nil {
		e.syncErr = err
	}
}

func (e *engine) restore(ctx context.Context) error {
	e.restoring = true
	defer func() { e.restoring = false }()

	snap, err := e.snapshots.Load(ctx)
	if errors.Is(err, domain.ErrNoSnapshot) {
		e.logger.Debug("no snapshot found, starting empty")
		return nil
	}
	if err != nil {
		return err
	}
	if err := app.ImportSnapshot(ctx, snap, e.catalog, e.quizzes, e.service.QuizOptions()...); err != nil {
		return err
	}
	e.logger.Debug("snapshot restored", "taken_at", snap.TakenAt, "quizzes", len(snap.Quizzes))
	return nil
}

// commit saves the whole state as a new snapshot.
func (e *engine) commit(ctx context.Context) error {
	snap, err := app.ExportSnapshot(ctx, e.catalog, e.quizzes, time.Now())
	if err != nil {
		return err
	}
	if err := e.snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	e.logger.Debug("snapshot saved", "quizzes", len(snap.Quizzes))
	if p, ok := e.snapshots.(snapshotPruner); ok && e.cfg.Storage.Keep > 0 {
		removed, err := p.Prune(ctx, e.cfg.Storage.Keep)
		if err != nil {
			return err
		}
		e.logger.Debug("snapshots pruned", "removed", removed, "keep", e.cfg.Storage.Keep)
	}
	return e.syncErr
}

func (e *engine) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// run opens the engine, calls fn and, when save is set, commits the state.
func run(cmd *cobra.Command, opts *rootOptions, save bool, fn func(ctx context.Context, e *engine) error) error {
	ctx := cmd.Context()
	e, err := openEngine(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer e.close()

	if err := fn(ctx, e); err != nil {
		if save {
			// keep whatever was recorded before the failure, e.g. answers already given
			if cerr := e.commit(ctx); cerr != nil {
				e.logger.Error("save snapshot after failure", "error", cerr)
			}
		}
		return err
	}
	if save {
		return e.commit(ctx)
	}
	return nil
}
