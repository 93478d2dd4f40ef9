package usecase

import (
	"context"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

type CreateLeadUseCase struct {
	Deps
}

func NewCreateLeadUseCase(deps Deps) *CreateLeadUseCase {
	return &CreateLeadUseCase{Deps: deps.withDefaults()}
}

// Execute captures a new lead and routes it to an advisor. Advisors always
// keep the leads they capture; only the supervisor may pick someone else.
func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	// 1. Reject bad input before any repository call
	if errs := ValidateLeadFields(input.LeadFields, uc.Models); len(errs) > 0 {
		return nil, newValidationError(errs)
	}
	if verr := uc.checkActor(input.ActorID); verr != nil {
		return nil, verr
	}

	override := input.AdvisorID
	if input.ActorID != entity.SupervisorID {
		override = input.ActorID
	}

	// 2. Balance against a fresh listing; a manual pick needs none
	var current []entity.Lead
	if override == "" || override == AutoAssign {
		leads, err := uc.Repo.List(ctx)
		if err != nil {
			return nil, newRepositoryError("list", "", err)
		}
		current = leads
	}

	advisor, err := SelectAdvisor(current, uc.Roster, override)
	if err != nil {
		return nil, err
	}

	// 3. Build and persist
	lead, err := NewLead(input.LeadFields, uc.Models, advisor, input.ActorID, uc.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.Repo.Create(ctx, &lead); err != nil {
		return nil, newRepositoryError("create", "", err)
	}

	uc.Metrics.LeadCreated(lead.Source, lead.AdvisorID)
	uc.Logger.InfoContext(ctx, "lead created",
		"lead_id", lead.ID, "advisor_id", lead.AdvisorID, "source", lead.Source, "actor", input.ActorID)

	// 4. Notify; the lead is already stored
	uc.publish(ctx, entity.EventLeadCreated, lead)

	return &lead, nil
}
