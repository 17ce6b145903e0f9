package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/pkg/logger"
	"github.com/medicloud/docs-api/pkg/messaging"
	"github.com/medicloud/docs-api/pkg/metrics"
)

// promauto registers against the default registry, so the test metrics are
// created exactly once for the package.
var (
	testMetrics     *metrics.Metrics
	testMetricsOnce sync.Once
)

func sharedMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewMetrics("medicloud_test", "worker")
	})
	return testMetrics
}

type fakeOutboxRepo struct {
	mu       sync.Mutex
	pending  []*model.OutboxEvent
	statuses map[uuid.UUID]model.OutboxStatus
	errMsgs  map[uuid.UUID]string
}

func newFakeOutboxRepo(events ...*model.OutboxEvent) *fakeOutboxRepo {
	return &fakeOutboxRepo{
		pending:  events,
		statuses: make(map[uuid.UUID]model.OutboxStatus),
		errMsgs:  make(map[uuid.UUID]string),
	}
}

func (r *fakeOutboxRepo) Create(_ context.Context, _ *model.OutboxEvent) error { return nil }

func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *fakeOutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	if errMsg != nil {
		r.errMsgs[id] = *errMsg
	}
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeBroker struct {
	mu        sync.Mutex
	published map[string][]messaging.Message
	failTypes map[string]bool
}

func newFakeBroker(failTypes ...string) *fakeBroker {
	fails := make(map[string]bool, len(failTypes))
	for _, t := range failTypes {
		fails[t] = true
	}
	return &fakeBroker{
		published: make(map[string][]messaging.Message),
		failTypes: fails,
	}
}

func (b *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	msg, ok := message.(messaging.Message)
	if !ok {
		return errors.New("unexpected message type")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failTypes[msg.Type] {
		return errors.New("broker unavailable")
	}
	b.published[channel] = append(b.published[channel], msg)
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func outboxEvent(channel, eventType string) *model.OutboxEvent {
	payload, _ := json.Marshal(map[string]string{"k": "v"})
	return &model.OutboxEvent{
		ID:        uuid.New(),
		Channel:   channel,
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
	}
}

func newTestProcessor(repo *fakeOutboxRepo, broker messaging.Broker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Millisecond,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.NewLogger(nil), sharedMetrics())
}

func TestProcessEvents(t *testing.T) {
	ev := outboxEvent(model.ChannelReports, "report_created")
	repo := newFakeOutboxRepo(ev)
	broker := newFakeBroker()

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[ev.ID])
	require.Len(t, broker.published[model.ChannelReports], 1)
	assert.Equal(t, "report_created", broker.published[model.ChannelReports][0].Type)
}

func TestProcessEventsMarksFailed(t *testing.T) {
	good := outboxEvent(model.ChannelUsers, "user_registered")
	bad := outboxEvent(model.ChannelReports, "report_signed")
	repo := newFakeOutboxRepo(good, bad)
	broker := newFakeBroker("report_signed")

	p := newTestProcessor(repo, broker)
	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[good.ID])
	assert.Equal(t, model.OutboxStatusFailed, repo.statuses[bad.ID])
	assert.NotEmpty(t, repo.errMsgs[bad.ID])
	assert.Len(t, broker.published[model.ChannelUsers], 1)
	assert.Empty(t, broker.published[model.ChannelReports])
}

func TestStartStopsOnContextCancel(t *testing.T) {
	repo := newFakeOutboxRepo()
	p := newTestProcessor(repo, newFakeBroker())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop after context cancellation")
	}
}

func TestConfigDefaults(t *testing.T) {
	p := NewOutboxProcessor(newFakeOutboxRepo(), newFakeBroker(), OutboxProcessorConfig{},
		logger.NewLogger(nil), sharedMetrics())

	assert.Equal(t, 100, p.config.BatchSize)
	assert.Equal(t, 5*time.Second, p.config.PollInterval)
	assert.Equal(t, 3, p.config.RetryAttempts)
	assert.Equal(t, time.Second, p.config.RetryDelay)
}
