package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"course-quiz-engine/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SnapshotStore keeps engine snapshots as JSONB rows. Saving also refreshes
// the courses table so rosters can be loaded without decoding a snapshot.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO snapshots (version, taken_at, data) VALUES ($1, $2, $3::jsonb)`,
		snap.Version, snap.TakenAt, string(data),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	for _, course := range snap.Catalog.Courses {
		if err := upsertCourse(ctx, tx, course); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *SnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Prune deletes all but the newest keep snapshots and returns how many rows were removed.
func (s *SnapshotStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT $1)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func upsertCourse(ctx context.Context, tx pgx.Tx, course domain.Course) error {
	raw, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("marshal course %s: %w", course.ID, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO courses (id, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		course.ID, string(raw),
	); err != nil {
		return fmt.Errorf("upsert course %s: %w", course.ID, err)
	}
	return nil
}
