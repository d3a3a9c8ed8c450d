package signals

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Repository provides database operations for behavioral signals
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new signals repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores a new signal. One record per subject per day.
func (r *Repository) Create(ctx context.Context, s *Signal) error {
	query := `
		INSERT INTO comorin.behavioral_signals (
			id, subject_code, recorded_on, emotion, stress_level,
			sleep_quality, activity_level, conversation_count, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.SubjectCode, s.RecordedOn, s.Emotion, s.StressLevel,
		s.SleepQuality, s.ActivityLevel, s.ConversationCount, s.Summary, s.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Conflict("signal already recorded for this subject and date")
		}
		return errors.Wrap(err, "failed to create signal")
	}

	return nil
}

// ListBySubject returns a subject's signals, newest first, up to limit
func (r *Repository) ListBySubject(ctx context.Context, subjectCode types.SubjectID, limit int) ([]*Signal, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT id, subject_code, recorded_on, emotion, stress_level,
			sleep_quality, activity_level, conversation_count, summary, created_at
		FROM comorin.behavioral_signals
		WHERE subject_code = $1
		ORDER BY recorded_on DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, subjectCode, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list signals")
	}
	defer rows.Close()

	result := []*Signal{}
	for rows.Next() {
		s := &Signal{}
		err := rows.Scan(
			&s.ID, &s.SubjectCode, &s.RecordedOn, &s.Emotion, &s.StressLevel,
			&s.SleepQuality, &s.ActivityLevel, &s.ConversationCount, &s.Summary, &s.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan signal")
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

// GetLatest returns the subject's most recent signal
func (r *Repository) GetLatest(ctx context.Context, subjectCode types.SubjectID) (*Signal, error) {
	query := `
		SELECT id, subject_code, recorded_on, emotion, stress_level,
			sleep_quality, activity_level, conversation_count, summary, created_at
		FROM comorin.behavioral_signals
		WHERE subject_code = $1
		ORDER BY recorded_on DESC
		LIMIT 1`

	s := &Signal{}
	err := r.pool.QueryRow(ctx, query, subjectCode).Scan(
		&s.ID, &s.SubjectCode, &s.RecordedOn, &s.Emotion, &s.StressLevel,
		&s.SleepQuality, &s.ActivityLevel, &s.ConversationCount, &s.Summary, &s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("signal", subjectCode.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest signal")
	}

	return s, nil
}

// Delete removes a signal
func (r *Repository) Delete(ctx context.Context, id types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comorin.behavioral_signals WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete signal")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("signal", id.String())
	}
	return nil
}
