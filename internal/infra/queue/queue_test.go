package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/dealer-leads/internal/entity"
)

type fakeAcknowledger struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked++
	f.requeue = f.requeue || requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func (f *fakeAcknowledger) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acked, f.nacked
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendAssignment(ctx context.Context, advisor entity.Advisor, event entity.LeadEvent) error {
	args := m.Called(ctx, advisor, event)
	return args.Error(0)
}

type fakeConsumer struct {
	msgs chan amqp.Delivery
	err  error
}

func (f *fakeConsumer) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.msgs, nil
}

var testRoster = entity.Roster{
	{ID: "adv1", Name: "Alejandro Hurtado", Email: "alejandro@example.com"},
	{ID: "adv2", Name: "Triana Montes"},
}

func delivery(t *testing.T, ack amqp.Acknowledger, event entity.LeadEvent) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func createdEvent(advisorID string) entity.LeadEvent {
	return entity.LeadEvent{
		Type:      entity.EventLeadCreated,
		LeadID:    "L1",
		LeadName:  "Mariana López",
		Model:     "CR-V",
		AdvisorID: advisorID,
	}
}

func TestWorker_NotifiesAssignedAdvisor(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("SendAssignment", mock.Anything, testRoster[0], mock.MatchedBy(func(e entity.LeadEvent) bool {
		return e.LeadID == "L1"
	})).Return(nil).Once()

	ack := &fakeAcknowledger{}
	w := NewWorker(nil, testRoster, notifier, nil)
	w.handle(context.Background(), delivery(t, ack, createdEvent("adv1")))

	acked, nacked := ack.counts()
	assert.Equal(t, 1, acked)
	assert.Equal(t, 0, nacked)
	notifier.AssertExpectations(t)
}

func TestWorker_SkipsWithoutNotifying(t *testing.T) {
	tests := []struct {
		name  string
		event entity.LeadEvent
	}{
		{"advisor without email", createdEvent("adv2")},
		{"advisor not on roster", createdEvent("adv9")},
		{"not a creation", entity.LeadEvent{Type: entity.EventStatusChanged, LeadID: "L1", AdvisorID: "adv1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := new(MockNotifier)
			ack := &fakeAcknowledger{}
			w := NewWorker(nil, testRoster, notifier, nil)
			w.handle(context.Background(), delivery(t, ack, tt.event))

			acked, _ := ack.counts()
			assert.Equal(t, 1, acked)
			notifier.AssertNotCalled(t, "SendAssignment", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWorker_DeadLettersFailures(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		w := NewWorker(nil, testRoster, new(MockNotifier), nil)
		w.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})

		acked, nacked := ack.counts()
		assert.Equal(t, 0, acked)
		assert.Equal(t, 1, nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("smtp failure", func(t *testing.T) {
		notifier := new(MockNotifier)
		notifier.On("SendAssignment", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		ack := &fakeAcknowledger{}
		w := NewWorker(nil, testRoster, notifier, nil)
		w.handle(context.Background(), delivery(t, ack, createdEvent("adv1")))

		_, nacked := ack.counts()
		assert.Equal(t, 1, nacked)
		assert.False(t, ack.requeue)
	})
}

func TestWorker_StartStopsOnContext(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("SendAssignment", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	consumer := &fakeConsumer{msgs: make(chan amqp.Delivery, 1)}
	ack := &fakeAcknowledger{}
	consumer.msgs <- delivery(t, ack, createdEvent("adv1"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewWorker(consumer, testRoster, notifier, nil).Start(ctx, QueueName)
	}()

	assert.Eventually(t, func() bool {
		acked, _ := ack.counts()
		return acked == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_StartErrors(t *testing.T) {
	w := NewWorker(&fakeConsumer{err: errors.New("channel closed")}, testRoster, new(MockNotifier), nil)
	assert.Error(t, w.Start(context.Background(), QueueName))

	consumer := &fakeConsumer{msgs: make(chan amqp.Delivery)}
	close(consumer.msgs)
	w = NewWorker(consumer, testRoster, new(MockNotifier), nil)
	assert.EqualError(t, w.Start(context.Background(), QueueName), "delivery channel closed")
}

type recordingPublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (p *recordingPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.exchange, p.key, p.msg = exchange, key, msg
	return p.err
}

func TestProducer_PublishLeadEvent(t *testing.T) {
	pub := &recordingPublisher{}
	event := createdEvent("adv1")
	event.OccurredAt = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	require.NoError(t, NewProducer(pub).PublishLeadEvent(context.Background(), event))

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, AssignmentRoutingKey, pub.key)
	assert.Equal(t, "application/json", pub.msg.ContentType)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "L1:20250314T103000.000000000", pub.msg.MessageId)

	var decoded entity.LeadEvent
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, event.LeadID, decoded.LeadID)
	assert.Equal(t, event.AdvisorID, decoded.AdvisorID)
}

func TestProducer_WrapsPublishError(t *testing.T) {
	pub := &recordingPublisher{err: amqp.ErrClosed}
	err := NewProducer(pub).PublishLeadEvent(context.Background(), createdEvent("adv1"))
	assert.ErrorIs(t, err, amqp.ErrClosed)
}
