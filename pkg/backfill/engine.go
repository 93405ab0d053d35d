// Package backfill recomputes the derived core column across the partner
// table in resumable, crash-safe batches.
package backfill

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/dfcarvalho/miolo/pkg/identifier"
	"github.com/dfcarvalho/miolo/pkg/models"
	"github.com/dfcarvalho/miolo/pkg/tracing"
)

// PartnerStore is the partner row access the engine needs.
type PartnerStore interface {
	CountQualifying(ctx context.Context, afterRowID int64) (int64, error)
	FetchQualifyingBatch(ctx context.Context, afterRowID int64, limit int) ([]models.Partner, error)
	ApplyCoreUpdates(ctx context.Context, updates []models.CoreUpdate) error
	RebuildCoreIndex(ctx context.Context) error
}

// CheckpointStore persists the engine's single-row progress record.
type CheckpointStore interface {
	Get(ctx context.Context) (*models.BackfillProgress, error)
	Save(ctx context.Context, progress *models.BackfillProgress) error
	Reset(ctx context.Context) (*models.BackfillProgress, error)
}

// ProgressEmitter publishes backfill progress for downstream observers.
// Optional; emission failures never affect the run.
type ProgressEmitter interface {
	EmitBackfillBatch(ctx context.Context, progress *models.BackfillProgress, batchRows int) error
	EmitBackfillCompleted(ctx context.Context, progress *models.BackfillProgress) error
}

// Config contains per-invocation engine parameters
type Config struct {
	// BatchSize is the number of rows corrected per transaction.
	BatchSize int
	// MaxBatches caps this invocation for a cooperative pause; 0 means run
	// until done.
	MaxBatches int
}

// DefaultBatchSize is used when the caller supplies no batch size.
const DefaultBatchSize = 1000

// Engine drives the core backfill
type Engine struct {
	logger      ectologger.Logger
	partners    PartnerStore
	checkpoints CheckpointStore
	emitter     ProgressEmitter
}

// NewEngine creates a new backfill engine. emitter may be nil.
func NewEngine(logger ectologger.Logger, partners PartnerStore, checkpoints CheckpointStore, emitter ProgressEmitter) *Engine {
	return &Engine{
		logger:      logger,
		partners:    partners,
		checkpoints: checkpoints,
		emitter:     emitter,
	}
}

// Run executes batches until done, paused, or failed. Each data batch
// commits in its own transaction, and the checkpoint commits in a separate
// one, so an interruption at any point duplicates at most one batch of
// idempotent work and never loses progress. The returned report reflects
// everything committed before the error, if any.
func (e *Engine) Run(ctx context.Context, cfg Config) (*models.BackfillReport, error) {
	ctx, span := tracing.StartSpan(ctx, "backfill.Engine.Run")
	defer span.End()

	start := time.Now()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	report := &models.BackfillReport{}
	defer func() { report.ElapsedMS = time.Since(start).Milliseconds() }()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{"batch_size": cfg.BatchSize, "max_batches": cfg.MaxBatches})

	progress, err := e.checkpoints.Get(ctx)
	if err != nil {
		return report, err
	}

	remaining, err := e.partners.CountQualifying(ctx, progress.LastProcessedRowID)
	if err != nil {
		return report, err
	}

	if remaining == 0 {
		// Re-running a finished job is a no-op until new rows appear.
		if progress.Status != models.BackfillStatusCompleted {
			if err := e.complete(ctx, progress, report); err != nil {
				return report, err
			}
		}
		report.Status = models.BackfillStatusCompleted
		log.Info("Backfill already complete")
		return report, nil
	}

	log.WithFields(map[string]any{"remaining": remaining, "resume_after": progress.LastProcessedRowID}).Info("Starting backfill run")

	for cfg.MaxBatches == 0 || report.BatchesRun < cfg.MaxBatches {
		if ctx.Err() != nil {
			break
		}

		rows, err := e.partners.FetchQualifyingBatch(ctx, progress.LastProcessedRowID, cfg.BatchSize)
		if err != nil {
			e.pause(ctx, progress, report)
			return report, err
		}
		if len(rows) == 0 {
			break
		}

		updates := make([]models.CoreUpdate, len(rows))
		for i, row := range rows {
			updates[i] = models.CoreUpdate{
				RowID: row.ID,
				Core:  identifier.BackfillCore(row.RawTaxID),
			}
		}

		if err := e.partners.ApplyCoreUpdates(ctx, updates); err != nil {
			// Batch rolled back; checkpoint still points at the last good
			// batch, so a re-run resumes exactly here.
			log.WithError(err).WithFields(map[string]any{"after_row_id": progress.LastProcessedRowID}).Error("Backfill batch failed")
			e.pause(ctx, progress, report)
			return report, err
		}

		progress.LastProcessedRowID = rows[len(rows)-1].ID
		progress.RowsProcessedCount += int64(len(rows))
		progress.Status = models.BackfillStatusInProgress
		if err := e.checkpoints.Save(ctx, progress); err != nil {
			return report, err
		}

		report.BatchesRun++
		report.RowsUpdated += int64(len(rows))

		if e.emitter != nil {
			if err := e.emitter.EmitBackfillBatch(ctx, progress, len(rows)); err != nil {
				log.WithError(err).Warn("Failed to emit backfill batch event")
			}
		}

		log.WithFields(map[string]any{
			"batch":                 report.BatchesRun,
			"last_processed_row_id": progress.LastProcessedRowID,
			"rows_processed_count":  progress.RowsProcessedCount,
		}).Debug("Committed backfill batch")
	}

	remaining, err = e.partners.CountQualifying(ctx, progress.LastProcessedRowID)
	if err != nil {
		return report, err
	}
	report.RowsRemaining = remaining

	if remaining > 0 {
		e.pause(ctx, progress, report)
		log.WithFields(map[string]any{"remaining": remaining}).Info("Backfill paused")
		return report, nil
	}

	if err := e.complete(ctx, progress, report); err != nil {
		return report, err
	}
	log.WithFields(map[string]any{"rows_updated": report.RowsUpdated}).Info("Backfill completed")
	return report, nil
}

// complete marks the checkpoint done, rebuilds the core index, and notifies
// observers.
func (e *Engine) complete(ctx context.Context, progress *models.BackfillProgress, report *models.BackfillReport) error {
	progress.Status = models.BackfillStatusCompleted
	if err := e.checkpoints.Save(ctx, progress); err != nil {
		return err
	}
	report.Status = models.BackfillStatusCompleted

	if err := e.partners.RebuildCoreIndex(ctx); err != nil {
		return err
	}
	report.IndexRebuilt = true

	if e.emitter != nil {
		if err := e.emitter.EmitBackfillCompleted(ctx, progress); err != nil {
			e.logger.WithContext(ctx).WithError(err).Warn("Failed to emit backfill completed event")
		}
	}
	return nil
}

// pause records the cooperative pause; best effort, the checkpoint row
// already holds the last committed batch.
func (e *Engine) pause(ctx context.Context, progress *models.BackfillProgress, report *models.BackfillReport) {
	progress.Status = models.BackfillStatusPaused
	if err := e.checkpoints.Save(ctx, progress); err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("Failed to persist paused status")
	}
	report.Status = models.BackfillStatusPaused
}
