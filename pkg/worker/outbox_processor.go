package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/repository"
	"github.com/theminddepartment/booking-api/pkg/logger"
	"github.com/theminddepartment/booking-api/pkg/messaging"
	"github.com/theminddepartment/booking-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	RetentionDays int
}

// OutboxProcessor drains pending booking events to the message broker.
// Each batch is claimed with FOR UPDATE SKIP LOCKED inside one
// transaction, so multiple processor instances never double-publish.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		panic("MaxRetries must be greater than 0")
	}
	if config.RetryBackoff <= 0 {
		panic("RetryBackoff must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(24 * time.Hour)
	defer cleanup.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox batch")
			}
		case <-cleanup.C:
			p.cleanupProcessed(ctx)
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	tx, err := p.repo.BeginTxx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin outbox transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	events, err := p.repo.GetPendingEventsWithLock(ctx, tx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.processEvent(ctx, tx, event); err != nil {
			p.logger.WithFields(map[string]interface{}{
				"event_id":   event.ID.String(),
				"event_type": event.EventType,
			}).Error(err, "failed to process event")
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outbox transaction: %w", err)
	}
	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	if err := p.broker.Publish(ctx, event.EventType, event.Payload); err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		return p.handleFailure(ctx, tx, event, err)
	}

	p.metrics.OutboxEventsProcessed.Inc()
	return p.repo.UpdateStatusTx(ctx, tx, event.ID, model.OutboxStatusProcessed, nil, nil)
}

// handleFailure schedules a retry with backoff, or moves the event to
// the dead-letter table once it has exhausted its attempts.
func (p *OutboxProcessor) handleFailure(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent, cause error) error {
	if event.RetryCount+1 >= p.config.MaxRetries {
		errStr := cause.Error()
		event.ErrorMessage = &errStr
		if err := p.repo.MoveToDeadLetterTx(ctx, tx, event); err != nil {
			return fmt.Errorf("failed to dead-letter event: %w", err)
		}
		p.logger.WithFields(map[string]interface{}{
			"event_id":   event.ID.String(),
			"event_type": event.EventType,
		}).Warn("event moved to dead letter after max retries")
		return nil
	}

	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	retryAt := time.Now().Add(p.config.RetryBackoff * time.Duration(event.RetryCount+1))
	if err := p.repo.IncrementRetryTx(ctx, tx, event.ID, retryAt, cause.Error()); err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	return cause
}

func (p *OutboxProcessor) cleanupProcessed(ctx context.Context) {
	if p.config.RetentionDays <= 0 {
		return
	}
	before := time.Now().AddDate(0, 0, -p.config.RetentionDays)
	deleted, err := p.repo.DeleteProcessedBefore(ctx, before)
	if err != nil {
		p.logger.Error(err, "failed to clean up processed events")
		return
	}
	if deleted > 0 {
		p.logger.WithFields(map[string]interface{}{"deleted": deleted}).Info("cleaned up processed outbox events")
	}
}
