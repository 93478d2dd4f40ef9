package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

type ChangeStatusUseCase struct {
	Deps
}

func NewChangeStatusUseCase(deps Deps) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{Deps: deps.withDefaults()}
}

type ChangeStatusOutput struct {
	Lead    *entity.Lead `json:"lead"`
	Changed bool         `json:"changed"`
}

func (uc *ChangeStatusUseCase) Execute(ctx context.Context, input ChangeStatusInput) (*ChangeStatusOutput, error) {
	if verr := validateStatus(input.Status); verr != nil {
		return nil, verr
	}
	if verr := uc.checkActor(input.ActorID); verr != nil {
		return nil, verr
	}

	// the note is kept as typed; blank only selects the default
	note := input.Note
	if strings.TrimSpace(note) == "" {
		note = QuickStatusNote
	}
	target := entity.Status(input.Status)

	var from entity.Status
	lead, changed, err := uc.appendWithRetry(ctx, "change_status", input.LeadID, input.ActorID,
		func(current entity.Lead, actorName string, now time.Time) (entity.Lead, bool, error) {
			from = current.Status
			return ChangeStatus(current, target, note, actorName, now)
		})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.Metrics.StatusChanged(from, target)
		uc.Logger.InfoContext(ctx, "lead status changed",
			"lead_id", lead.ID, "from", from, "to", target, "actor", input.ActorID)
		uc.publish(ctx, entity.EventStatusChanged, *lead)
	}

	return &ChangeStatusOutput{Lead: lead, Changed: changed}, nil
}
