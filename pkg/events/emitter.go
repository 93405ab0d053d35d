// Package events handles event emission for lookup and maintenance outcomes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/dfcarvalho/miolo/pkg/kafka"
	"github.com/dfcarvalho/miolo/pkg/models"
	"github.com/dfcarvalho/miolo/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Producer is the publishing surface the emitter needs.
type Producer interface {
	PublishBackfillEvent(ctx context.Context, event *kafka.BackfillEvent) error
	PublishResolutionEvent(ctx context.Context, event *kafka.ResolutionEvent) error
}

// Emitter publishes domain events
type Emitter struct {
	producer Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitBackfillBatch emits a progress event after a committed backfill batch
func (e *Emitter) EmitBackfillBatch(ctx context.Context, progress *models.BackfillProgress, batchRows int) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBackfillBatch")
	defer span.End()

	event := &kafka.BackfillEvent{
		EventType:          "backfill.batch",
		LastProcessedRowID: progress.LastProcessedRowID,
		RowsProcessedCount: progress.RowsProcessedCount,
		BatchRows:          batchRows,
		Status:             string(progress.Status),
	}

	if err := e.producer.PublishBackfillEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit backfill.batch event")
		return err
	}

	return nil
}

// EmitBackfillCompleted emits the terminal backfill event
func (e *Emitter) EmitBackfillCompleted(ctx context.Context, progress *models.BackfillProgress) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBackfillCompleted")
	defer span.End()

	event := &kafka.BackfillEvent{
		EventType:          "backfill.completed",
		LastProcessedRowID: progress.LastProcessedRowID,
		RowsProcessedCount: progress.RowsProcessedCount,
		Status:             string(progress.Status),
	}

	if err := e.producer.PublishBackfillEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit backfill.completed event")
		return err
	}

	return nil
}

// EmitPartnerResolved emits the outcome of one partner lookup
func (e *Emitter) EmitPartnerResolved(ctx context.Context, res *models.Resolution) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPartnerResolved")
	defer span.End()

	result, err := json.Marshal(map[string]any{
		"schema_version": SchemaVersion,
		"matched_name":   res.MatchedName,
		"companies":      res.Companies,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to serialize resolution result")
		return err
	}

	event := &kafka.ResolutionEvent{
		EventType:  "partner.resolved",
		EventID:    uuid.New().String(),
		Identifier: res.Identifier,
		Status:     string(res.Status),
		Score:      res.Score,
		Result:     result,
	}

	if err := e.producer.PublishResolutionEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit partner.resolved event")
		return err
	}

	return nil
}
