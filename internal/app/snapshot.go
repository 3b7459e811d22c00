package app

import (
	"context"
	"fmt"
	"time"

	"course-quiz-engine/internal/domain"
)

// SnapshotStore persists whole-engine snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap domain.Snapshot) error
	// Load returns domain.ErrNoSnapshot when nothing has been saved yet.
	Load(ctx context.Context) (domain.Snapshot, error)
}

// Catalog is the part of the state owned by collaborators: users, courses and question banks.
type Catalog interface {
	ExportCatalog(ctx context.Context) (domain.Catalog, error)
	ImportCatalog(ctx context.Context, catalog domain.Catalog) error
}

// ExportSnapshot captures the catalog and every quiz with its attempts.
func ExportSnapshot(ctx context.Context, catalog Catalog, quizzes QuizStore, takenAt time.Time) (domain.Snapshot, error) {
	cat, err := catalog.ExportCatalog(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("export catalog: %w", err)
	}
	all := quizzes.All()
	snap := domain.Snapshot{
		Version: domain.SnapshotVersion,
		TakenAt: takenAt,
		Catalog: cat,
		Quizzes: make([]domain.QuizRecord, 0, len(all)),
	}
	for _, quiz := range all {
		snap.Quizzes = append(snap.Quizzes, quiz.Record())
	}
	return snap, nil
}

// ImportSnapshot restores a snapshot into empty stores. Quizzes are rebuilt
// with opts, usually QuizService.QuizOptions.
func ImportSnapshot(ctx context.Context, snap domain.Snapshot, catalog Catalog, quizzes QuizStore, opts ...QuizOption) error {
	if snap.Version != domain.SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if err := catalog.ImportCatalog(ctx, snap.Catalog); err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	for _, rec := range snap.Quizzes {
		quiz, err := RestoreQuiz(rec, opts...)
		if err != nil {
			return fmt.Errorf("restore quiz %s/%s: %w", rec.Info.CourseID, rec.Info.ID, err)
		}
		if err := quizzes.Add(quiz); err != nil {
			return fmt.Errorf("register quiz %s/%s: %w", rec.Info.CourseID, rec.Info.ID, err)
		}
	}
	return nil
}
