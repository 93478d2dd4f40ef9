package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

// DefaultMaxWriteAttempts bounds the optimistic retry loop of history writes.
const DefaultMaxWriteAttempts = 3

type LeadEventPublisher interface {
	PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

// MetricsRecorder receives domain counters. The HTTP layer plugs Prometheus in.
type MetricsRecorder interface {
	LeadCreated(source entity.Source, advisorID string)
	StatusChanged(from, to entity.Status)
	CommentAdded()
	WriteConflict(op string)
	EventDropped(t entity.LeadEventType)
}

type nopMetrics struct{}

func (nopMetrics) LeadCreated(entity.Source, string) {}
func (nopMetrics) StatusChanged(_, _ entity.Status)  {}
func (nopMetrics) CommentAdded()                     {}
func (nopMetrics) WriteConflict(string)              {}
func (nopMetrics) EventDropped(entity.LeadEventType) {}

// Clock is swapped out in tests.
type Clock func() time.Time

// Deps are the collaborators shared by every lead use case.
type Deps struct {
	Repo      entity.LeadRepositoryInterface
	Roster    entity.Roster
	Models    []string
	Publisher LeadEventPublisher
	Metrics   MetricsRecorder
	Logger    *slog.Logger
	Now       Clock
	// MaxWriteAttempts falls back to DefaultMaxWriteAttempts when <= 0.
	MaxWriteAttempts int
}

func (d Deps) withDefaults() Deps {
	if d.Metrics == nil {
		d.Metrics = nopMetrics{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MaxWriteAttempts <= 0 {
		d.MaxWriteAttempts = DefaultMaxWriteAttempts
	}
	if d.Models == nil {
		d.Models = entity.DefaultModels
	}
	return d
}

func (d Deps) publish(ctx context.Context, t entity.LeadEventType, l entity.Lead) {
	if d.Publisher == nil {
		return
	}
	if err := d.Publisher.PublishLeadEvent(ctx, entity.NewLeadEvent(t, l)); err != nil {
		// the write already happened; the event is best effort
		d.Logger.WarnContext(ctx, "lead event not published",
			"event", t, "lead_id", l.ID, "error", err)
		d.Metrics.EventDropped(t)
	}
}

// checkActor rejects ids that are neither the supervisor nor a roster advisor.
func (d Deps) checkActor(actorID string) *DomainError {
	if !d.Roster.IsViewer(actorID) {
		return newValidationError([]ValidationError{{"actor_id", "is not a known user"}})
	}
	return nil
}
