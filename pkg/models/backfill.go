package models

import "time"

// BackfillStatus tracks the lifecycle of the core backfill job.
type BackfillStatus string

const (
	BackfillStatusInProgress BackfillStatus = "in_progress"
	BackfillStatusPaused     BackfillStatus = "paused"
	BackfillStatusCompleted  BackfillStatus = "completed"
)

// BackfillProgress is the single-row checkpoint for the core backfill.
// Any process may read it to observe progress; only the engine writes it.
type BackfillProgress struct {
	LastProcessedRowID int64          `json:"last_processed_row_id" db:"last_processed_row_id"`
	RowsProcessedCount int64          `json:"rows_processed_count" db:"rows_processed_count"`
	Status             BackfillStatus `json:"status" db:"status"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// CoreUpdate assigns a recomputed core to one partner row.
type CoreUpdate struct {
	RowID int64
	Core  string
}

// BackfillReport summarizes one engine invocation.
type BackfillReport struct {
	BatchesRun    int            `json:"batches_run"`
	RowsUpdated   int64          `json:"rows_updated"`
	RowsRemaining int64          `json:"rows_remaining"`
	Status        BackfillStatus `json:"status"`
	IndexRebuilt  bool           `json:"index_rebuilt"`
	ElapsedMS     int64          `json:"elapsed_time_ms"`
}
