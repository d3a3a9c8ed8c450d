package subject

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Repository provides database operations for subjects
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new subject repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores a new subject. The unique constraint on the code backs
// up the allocator, which holds no registry of its own.
func (r *Repository) Create(ctx context.Context, s *Subject) error {
	query := `
		INSERT INTO comorin.subjects (subject_code, enrolled_at, status, notes)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, s.Code, s.EnrolledAt, s.Status, s.Notes)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Conflict("subject code already allocated")
		}
		return errors.Wrap(err, "failed to create subject")
	}

	return nil
}

// Get retrieves a subject by code
func (r *Repository) Get(ctx context.Context, code types.SubjectID) (*Subject, error) {
	query := `
		SELECT subject_code, enrolled_at, status, notes
		FROM comorin.subjects
		WHERE subject_code = $1`

	s := &Subject{}
	err := r.pool.QueryRow(ctx, query, code).Scan(&s.Code, &s.EnrolledAt, &s.Status, &s.Notes)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("subject", code.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get subject")
	}

	return s, nil
}

// List returns all subjects ordered by code. The fixed-width format
// makes string order match (year, sequence) order.
func (r *Repository) List(ctx context.Context, status Status) ([]*Subject, error) {
	query := `
		SELECT subject_code, enrolled_at, status, notes
		FROM comorin.subjects`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY subject_code`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list subjects")
	}
	defer rows.Close()

	subjects := []*Subject{}
	for rows.Next() {
		s := &Subject{}
		if err := rows.Scan(&s.Code, &s.EnrolledAt, &s.Status, &s.Notes); err != nil {
			return nil, errors.Wrap(err, "failed to scan subject")
		}
		subjects = append(subjects, s)
	}

	return subjects, rows.Err()
}

// LatestCode returns the highest allocated subject code, or empty when
// no subject exists yet
func (r *Repository) LatestCode(ctx context.Context) (types.SubjectID, error) {
	query := `
		SELECT subject_code
		FROM comorin.subjects
		ORDER BY subject_code DESC
		LIMIT 1`

	var code types.SubjectID
	err := r.pool.QueryRow(ctx, query).Scan(&code)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to get latest subject code")
	}

	return code, nil
}

// UpdateStatus changes a subject's support status
func (r *Repository) UpdateStatus(ctx context.Context, code types.SubjectID, status Status, notes string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE comorin.subjects SET status = $2, notes = $3 WHERE subject_code = $1`,
		code, status, notes,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update subject")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("subject", code.String())
	}
	return nil
}
