package entity

import "time"

type LeadEventType string

const (
	EventLeadCreated   LeadEventType = "lead.created"
	EventStatusChanged LeadEventType = "lead.status_changed"
	EventLeadCommented LeadEventType = "lead.commented"
)

// LeadEvent is published after a successful write. Consumers must not
// treat it as the source of truth; the lead's history is.
type LeadEvent struct {
	Type        LeadEventType `json:"type"`
	LeadID      string        `json:"lead_id"`
	LeadName    string        `json:"lead_name"`
	Phone       string        `json:"phone"`
	Model       string        `json:"model_interest"`
	Source      Source        `json:"source"`
	Status      Status        `json:"status"`
	AdvisorID   string        `json:"advisor_id"`
	AdvisorName string        `json:"advisor_name"`
	Actor       string        `json:"actor,omitempty"`
	Text        string        `json:"text,omitempty"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

// NewLeadEvent builds the event from the lead's latest history entry.
func NewLeadEvent(t LeadEventType, l Lead) LeadEvent {
	ev := LeadEvent{
		Type:        t,
		LeadID:      l.ID,
		LeadName:    l.Name,
		Phone:       l.Phone,
		Model:       l.ModelInterest,
		Source:      l.Source,
		Status:      l.Status,
		AdvisorID:   l.AdvisorID,
		AdvisorName: l.AdvisorName,
		OccurredAt:  time.Now(),
	}
	if n := len(l.History); n > 0 {
		last := l.History[n-1]
		ev.Actor = last.User
		ev.Text = last.Text
		ev.OccurredAt = last.Date
	}
	return ev
}
