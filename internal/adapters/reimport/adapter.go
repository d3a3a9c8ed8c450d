// Package reimport pulls consultation notes out of the legacy SQL
// Server case system and runs them through the extraction pipeline, so
// records written before this system existed get structured
// assessments too.
package reimport

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/assessment"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/config"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/metrics"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

const sourceName = "legacy_mssql"

// note is one row of the legacy consultation-notes table
type note struct {
	SubjectCode string
	Text        string
	RecordedAt  time.Time
}

// Adapter polls the legacy database and imports new notes
type Adapter struct {
	cfg         config.ReimportConfig
	extractor   *assessment.Extractor
	assessments *assessment.Repository
	checkpoints *CheckpointStore
	log         *slog.Logger

	db      *sql.DB
	running bool
	mu      sync.RWMutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a reimport adapter
func New(cfg config.ReimportConfig, extractor *assessment.Extractor, assessments *assessment.Repository, checkpoints *CheckpointStore, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		cfg:         cfg,
		extractor:   extractor,
		assessments: assessments,
		checkpoints: checkpoints,
		log:         logger,
	}
}

// Start opens the legacy connection and begins polling
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return fmt.Errorf("reimport adapter already running")
	}

	db, err := sql.Open("sqlserver", a.cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open legacy database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping legacy database: %w", err)
	}

	a.db = db
	a.running = true

	pollCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go a.pollLoop(pollCtx)

	return nil
}

// Stop halts polling and closes the legacy connection
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}

	if a.cancel != nil {
		a.cancel()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if a.db != nil {
		a.db.Close()
	}

	a.running = false
	return nil
}

// Health checks legacy database connectivity
func (a *Adapter) Health(ctx context.Context) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.running {
		return fmt.Errorf("reimport adapter not running")
	}
	return a.db.PingContext(ctx)
}

func (a *Adapter) pollLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.importBatch(ctx); err != nil {
				a.log.Warn("reimport batch failed", "error", err)
			}
		}
	}
}

// importBatch imports the next batch of notes after the checkpoint.
// The checkpoint advances per note, so a mid-batch failure resumes at
// the failed note rather than re-importing the whole batch.
func (a *Adapter) importBatch(ctx context.Context) error {
	since, err := a.checkpoints.Get(ctx, sourceName)
	if err != nil {
		return err
	}

	notes, err := a.fetchNotes(ctx, since)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return nil
	}

	a.log.Info("importing legacy notes", "count", len(notes), "since", since)

	for _, n := range notes {
		code := types.SubjectID(n.SubjectCode)
		if !code.IsValid() {
			metrics.RecordReimportedNote("invalid_subject")
			a.log.Warn("skipping note with invalid subject code", "recorded_at", n.RecordedAt)
			if err := a.checkpoints.Advance(ctx, sourceName, n.RecordedAt); err != nil {
				return err
			}
			continue
		}

		result, err := a.extractor.Extract(ctx, code, n.Text)
		if err != nil {
			// A down backend stops the batch; bad input skips the note
			if appErr, ok := err.(*errors.AppError); ok && appErr.Code == "SERVICE_UNAVAILABLE" {
				metrics.RecordReimportedNote("backend_unavailable")
				return err
			}
			metrics.RecordReimportedNote("extraction_failed")
			a.log.Warn("skipping unextractable note",
				"subject", code,
				"recorded_at", n.RecordedAt,
				"error", err,
			)
			if err := a.checkpoints.Advance(ctx, sourceName, n.RecordedAt); err != nil {
				return err
			}
			continue
		}

		if err := a.assessments.Create(ctx, result); err != nil {
			return err
		}
		if err := a.checkpoints.Advance(ctx, sourceName, n.RecordedAt); err != nil {
			return err
		}

		metrics.RecordReimportedNote("ok")
	}

	return nil
}

// fetchNotes reads the next batch of legacy notes after the given
// timestamp, oldest first
func (a *Adapter) fetchNotes(ctx context.Context, since time.Time) ([]note, error) {
	query := fmt.Sprintf(`
		SELECT TOP (%d) SubjectCode, NoteText, RecordedAt
		FROM %s
		WHERE RecordedAt > @since
		ORDER BY RecordedAt ASC`,
		a.cfg.BatchSize, a.cfg.NotesTable,
	)

	rows, err := a.db.QueryContext(ctx, query, sql.Named("since", since))
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy notes: %w", err)
	}
	defer rows.Close()

	var notes []note
	for rows.Next() {
		var n note
		var text sql.NullString
		if err := rows.Scan(&n.SubjectCode, &text, &n.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan legacy note: %w", err)
		}
		if text.Valid {
			n.Text = text.String
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}
