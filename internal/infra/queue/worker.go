package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/dealer-leads/internal/entity"
)

// AssignmentNotifier tells an advisor a lead was routed to them.
type AssignmentNotifier interface {
	SendAssignment(ctx context.Context, advisor entity.Advisor, event entity.LeadEvent) error
}

// Consumer is the slice of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker drains the assignment queue and emails each advisor about the
// leads they received.
type Worker struct {
	Channel  Consumer
	Roster   entity.Roster
	Notifier AssignmentNotifier
	Logger   *slog.Logger
}

func NewWorker(ch Consumer, roster entity.Roster, notifier AssignmentNotifier, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		Channel:  ch,
		Roster:   roster,
		Notifier: notifier,
		Logger:   logger,
	}
}

// Start consumes queueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Info("assignment worker waiting", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event entity.LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// malformed: dead-letter it instead of blocking the queue
		w.Logger.Error("invalid lead event", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.process(ctx, event); err != nil {
		w.Logger.Error("assignment notification failed",
			"lead_id", event.LeadID, "advisor_id", event.AdvisorID, "error", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (w *Worker) process(ctx context.Context, event entity.LeadEvent) error {
	if event.Type != entity.EventLeadCreated {
		return nil
	}

	advisor, ok := w.Roster.Find(event.AdvisorID)
	if !ok || advisor.Email == "" {
		w.Logger.Info("advisor has no email, skipping notification",
			"lead_id", event.LeadID, "advisor_id", event.AdvisorID)
		return nil
	}

	if err := w.Notifier.SendAssignment(ctx, advisor, event); err != nil {
		return err
	}
	w.Logger.Info("advisor notified", "lead_id", event.LeadID, "advisor_id", advisor.ID)
	return nil
}
