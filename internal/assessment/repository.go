package assessment

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Repository provides database operations for assessments. History is
// append-only; the record with the latest created_at is current.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new assessment repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores a new assessment. Warnings are extraction-time output
// and are not persisted.
func (r *Repository) Create(ctx context.Context, a *Assessment) error {
	data, err := json.Marshal(a.Data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal assessment data")
	}

	query := `
		INSERT INTO comorin.assessments (
			id, subject_code, data, source_text, confidence, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.pool.Exec(ctx, query,
		a.ID, a.SubjectCode, data, a.SourceText, a.Confidence, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create assessment")
	}

	return nil
}

// Get retrieves an assessment by ID
func (r *Repository) Get(ctx context.Context, id string) (*Assessment, error) {
	query := `
		SELECT id, subject_code, data, source_text, confidence, created_at, updated_at
		FROM comorin.assessments
		WHERE id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id), id)
}

// GetCurrent retrieves the subject's latest assessment
func (r *Repository) GetCurrent(ctx context.Context, subjectCode types.SubjectID) (*Assessment, error) {
	query := `
		SELECT id, subject_code, data, source_text, confidence, created_at, updated_at
		FROM comorin.assessments
		WHERE subject_code = $1
		ORDER BY created_at DESC
		LIMIT 1`

	return r.scanOne(r.pool.QueryRow(ctx, query, subjectCode), subjectCode.String())
}

// ListBySubject returns all assessments for a subject, newest first
func (r *Repository) ListBySubject(ctx context.Context, subjectCode types.SubjectID) ([]*Assessment, error) {
	query := `
		SELECT id, subject_code, data, source_text, confidence, created_at, updated_at
		FROM comorin.assessments
		WHERE subject_code = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, subjectCode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list assessments")
	}
	defer rows.Close()

	assessments := []*Assessment{}
	for rows.Next() {
		a := &Assessment{}
		var data []byte
		err := rows.Scan(&a.ID, &a.SubjectCode, &data, &a.SourceText, &a.Confidence, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan assessment")
		}
		if err := json.Unmarshal(data, &a.Data); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal assessment data")
		}
		a.Data.Normalize()
		assessments = append(assessments, a)
	}

	return assessments, rows.Err()
}

// Replace overwrites the full data record of an existing assessment.
// There are no partial-field patches.
func (r *Repository) Replace(ctx context.Context, a *Assessment) error {
	data, err := json.Marshal(a.Data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal assessment data")
	}

	query := `
		UPDATE comorin.assessments
		SET data = $2, confidence = $3, updated_at = $4
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, a.ID, data, a.Confidence, a.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to update assessment")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("assessment", a.ID)
	}

	return nil
}

// Delete removes an assessment by explicit operator action
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comorin.assessments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete assessment")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("assessment", id)
	}
	return nil
}

func (r *Repository) scanOne(row pgx.Row, ref string) (*Assessment, error) {
	a := &Assessment{}
	var data []byte
	err := row.Scan(&a.ID, &a.SubjectCode, &data, &a.SourceText, &a.Confidence, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("assessment", ref)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get assessment")
	}
	if err := json.Unmarshal(data, &a.Data); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal assessment data")
	}
	a.Data.Normalize()
	return a, nil
}
