package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/internal/repository"
	"github.com/medicloud/docs-api/pkg/logger"
)

const processedEventExpiry = 24 * time.Hour

// Service records change notifications in the transactional outbox. The outbox
// processor relays them to broker channels so clients can keep their cached
// views current without polling the store.
type Service struct {
	outboxRepo repository.OutboxRepository
	logger     *logger.Logger
}

func NewService(outboxRepo repository.OutboxRepository, logger *logger.Logger) *Service {
	return &Service{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Emit persists a change event for the given collection channel. Emission
// failures are logged but never fail the mutation that produced them.
func (s *Service) Emit(ctx context.Context, channel, eventType string, payload interface{}) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal event payload", "event_type", eventType)
		return
	}

	event := &model.OutboxEvent{
		Channel:   channel,
		EventType: eventType,
		Payload:   payloadJSON,
	}

	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to record change event",
			"channel", channel, "event_type", eventType)
	}
}

// CleanupProcessedEvents removes relayed events older than the retention window.
func (s *Service) CleanupProcessedEvents(ctx context.Context) error {
	cutoff := time.Now().Add(-processedEventExpiry)
	count, err := s.outboxRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup events: %w", err)
	}
	if count > 0 {
		s.logger.Info("cleaned up processed events", "deleted", count)
	}
	return nil
}
