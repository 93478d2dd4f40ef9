package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

// QuickStatusNote is recorded when a status change comes without a note.
const QuickStatusNote = "Cambio de estatus rápido"

// NewLead builds a lead in status new with its single system entry. ID,
// CreatedAt and Version are left for the repository.
func NewLead(f LeadFields, models []string, advisor entity.Advisor, actorID string, now time.Time) (entity.Lead, error) {
	if errs := ValidateLeadFields(f, models); len(errs) > 0 {
		return entity.Lead{}, newValidationError(errs)
	}

	return entity.Lead{
		Name:          strings.TrimSpace(f.Name),
		Phone:         strings.TrimSpace(f.Phone),
		Email:         strings.TrimSpace(f.Email),
		ModelInterest: f.ModelInterest,
		Source:        entity.Source(f.Source),
		Status:        entity.StatusNew,
		AdvisorID:     advisor.ID,
		AdvisorName:   advisor.Name,
		AuthorID:      actorID,
		History: []entity.HistoryEntry{{
			Type: entity.EntrySystem,
			Text: fmt.Sprintf("Lead creado (%s) y asignado a %s", f.Source, advisor.Name),
			Date: now,
		}},
	}, nil
}

// ChangeStatus moves the lead to newStatus. Moving to the current status is a
// no-op: the lead comes back untouched and changed is false.
func ChangeStatus(lead entity.Lead, newStatus entity.Status, note, actorName string, now time.Time) (entity.Lead, bool, error) {
	if verr := validateStatus(string(newStatus)); verr != nil {
		return lead, false, verr
	}
	if newStatus == lead.Status {
		return lead, false, nil
	}

	next := lead.Clone()
	next.History = append(next.History, entity.HistoryEntry{
		Type: entity.EntryStatusChange,
		Text: fmt.Sprintf("Cambio de %s a %s. Nota: %s", lead.Status, newStatus, note),
		Date: now,
		User: actorName,
	})
	next.Status = newStatus
	return next, true, nil
}

// AddComment appends text verbatim. Status is left alone.
func AddComment(lead entity.Lead, text, actorName string, now time.Time) (entity.Lead, error) {
	if verr := validateComment(text); verr != nil {
		return lead, verr
	}

	next := lead.Clone()
	next.History = append(next.History, entity.HistoryEntry{
		Type: entity.EntryComment,
		Text: text,
		Date: now,
		User: actorName,
	})
	return next, nil
}

// ActorName is the display name recorded on user-authored entries.
func ActorName(roster entity.Roster, actorID string) string {
	if actorID == entity.SupervisorID {
		return "Supervisor"
	}
	if adv, ok := roster.Find(actorID); ok {
		return adv.Name
	}
	return "Agente"
}
