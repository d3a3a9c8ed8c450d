package reimport

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
)

// CheckpointStore persists the import high-water mark so a restart
// resumes where the last run stopped
type CheckpointStore struct {
	pool *pgxpool.Pool
}

// NewCheckpointStore creates a checkpoint store
func NewCheckpointStore(pool *pgxpool.Pool) *CheckpointStore {
	return &CheckpointStore{pool: pool}
}

// Get returns the last imported note timestamp for a source, or the
// zero time when the source has never been imported
func (c *CheckpointStore) Get(ctx context.Context, source string) (time.Time, error) {
	var last time.Time
	err := c.pool.QueryRow(ctx,
		`SELECT last_note_at FROM comorin.reimport_checkpoints WHERE source = $1`,
		source,
	).Scan(&last)
	if err == pgx.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to read reimport checkpoint")
	}
	return last, nil
}

// Advance moves the high-water mark forward
func (c *CheckpointStore) Advance(ctx context.Context, source string, lastNoteAt time.Time) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO comorin.reimport_checkpoints (source, last_note_at, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (source) DO UPDATE
		SET last_note_at = EXCLUDED.last_note_at, updated_at = EXCLUDED.updated_at`,
		source, lastNoteAt, time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to advance reimport checkpoint")
	}
	return nil
}
