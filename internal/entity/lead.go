package entity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrVersionConflict = errors.New("lead changed by a concurrent write")
)

// Entry types of a lead's history.
type EntryType string

const (
	EntrySystem       EntryType = "system"
	EntryStatusChange EntryType = "status_change"
	EntryComment      EntryType = "comment"
)

// HistoryEntry is one immutable line of the lead's activity log.
// System entries carry no User.
type HistoryEntry struct {
	Type EntryType `json:"type"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
	User string    `json:"user,omitempty"`
}

type Lead struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email,omitempty"`
	ModelInterest string         `json:"model_interest"`
	Source        Source         `json:"source"`
	Status        Status         `json:"status"`
	AdvisorID     string         `json:"advisor_id"`
	AdvisorName   string         `json:"advisor_name"`
	AuthorID      string         `json:"author_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	History       []HistoryEntry `json:"history"`
	Version       int64          `json:"version"`
}

// InFlight reports whether the lead still counts towards its advisor's load.
func (l Lead) InFlight() bool {
	return l.Status.InFlight()
}

// Clone returns a copy that shares no history backing array with l.
func (l Lead) Clone() Lead {
	c := l
	c.History = CloneHistory(l.History)
	return c
}

func CloneHistory(h []HistoryEntry) []HistoryEntry {
	if h == nil {
		return nil
	}
	out := make([]HistoryEntry, len(h))
	copy(out, h)
	return out
}

// LeadPatch is the whole {status, history} write applied by Update.
type LeadPatch struct {
	Status  Status
	History []HistoryEntry
}

type LeadRepositoryInterface interface {
	// Create assigns ID, CreatedAt and Version before persisting.
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	// List returns every lead, newest first.
	List(ctx context.Context) ([]Lead, error)
	// Update applies patch and bumps the version by one, only if the stored
	// version still equals expectedVersion. Otherwise it returns ErrVersionConflict.
	Update(ctx context.Context, id string, expectedVersion int64, patch LeadPatch) error
}
