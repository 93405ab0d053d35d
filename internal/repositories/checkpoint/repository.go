package checkpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/dfcarvalho/miolo/pkg/database"
	"github.com/dfcarvalho/miolo/pkg/models"
	"github.com/dfcarvalho/miolo/pkg/tracing"
)

// Repository owns the single-row backfill checkpoint. Other processes may
// read the table to observe progress; only the backfill engine writes it.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new checkpoint repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get loads the checkpoint, initializing it on first use. A malformed
// stored row (negative counters or an unknown status) is reset to a fresh
// checkpoint rather than failing the run.
func (r *Repository) Get(ctx context.Context) (*models.BackfillProgress, error) {
	ctx, span := tracing.StartSpan(ctx, "checkpoint.Repository.Get")
	defer span.End()

	query := `
		SELECT last_processed_row_id, rows_processed_count, COALESCE(status, '') AS status, updated_at
		FROM backfill_progress
		WHERE id = 1
	`

	var progress models.BackfillProgress
	err := r.db.GetContext(ctx, &progress, query)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return r.Reset(ctx)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load backfill checkpoint")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load backfill checkpoint")
	}

	if !isValid(&progress) {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"last_processed_row_id": progress.LastProcessedRowID,
			"rows_processed_count":  progress.RowsProcessedCount,
			"status":                progress.Status,
		}).Warn("Backfill checkpoint is malformed, resetting")
		return r.Reset(ctx)
	}

	return &progress, nil
}

// Save persists the checkpoint. Runs in its own transaction, separate from
// the data batch, so a crash between the two duplicates at most one batch of
// idempotent work instead of losing progress.
func (r *Repository) Save(ctx context.Context, progress *models.BackfillProgress) error {
	ctx, span := tracing.StartSpan(ctx, "checkpoint.Repository.Save")
	defer span.End()

	query := `
		INSERT INTO backfill_progress (id, last_processed_row_id, rows_processed_count, status, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			last_processed_row_id = EXCLUDED.last_processed_row_id,
			rows_processed_count = EXCLUDED.rows_processed_count,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, progress.LastProcessedRowID, progress.RowsProcessedCount, progress.Status, now); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to save backfill checkpoint")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save backfill checkpoint")
	}
	progress.UpdatedAt = now
	return nil
}

// Reset writes a fresh checkpoint so the backfill starts over from row zero.
func (r *Repository) Reset(ctx context.Context) (*models.BackfillProgress, error) {
	ctx, span := tracing.StartSpan(ctx, "checkpoint.Repository.Reset")
	defer span.End()

	progress := &models.BackfillProgress{
		LastProcessedRowID: 0,
		RowsProcessedCount: 0,
		Status:             models.BackfillStatusInProgress,
	}
	if err := r.Save(ctx, progress); err != nil {
		return nil, err
	}

	r.logger.WithContext(ctx).Info("Reset backfill checkpoint")
	return progress, nil
}

func isValid(p *models.BackfillProgress) bool {
	if p.LastProcessedRowID < 0 || p.RowsProcessedCount < 0 {
		return false
	}
	switch p.Status {
	case models.BackfillStatusInProgress, models.BackfillStatusPaused, models.BackfillStatusCompleted:
		return true
	}
	return false
}
