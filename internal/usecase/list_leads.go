package usecase

import (
	"context"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

// LeadQueryUseCase serves the read side: list, detail, dashboard and the
// advisor load board. Every read goes through the view filter.
type LeadQueryUseCase struct {
	Deps
}

func NewLeadQueryUseCase(deps Deps) *LeadQueryUseCase {
	return &LeadQueryUseCase{Deps: deps.withDefaults()}
}

func (uc *LeadQueryUseCase) visible(ctx context.Context, viewerID string) ([]entity.Lead, error) {
	if verr := uc.checkActor(viewerID); verr != nil {
		return nil, verr
	}
	all, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, newRepositoryError("list", "", err)
	}
	return VisibleLeads(all, viewerID), nil
}

// List returns the viewer's leads, newest first, narrowed by the search box.
func (uc *LeadQueryUseCase) List(ctx context.Context, input ListLeadsInput) ([]entity.Lead, error) {
	leads, err := uc.visible(ctx, input.ViewerID)
	if err != nil {
		return nil, err
	}
	return FilterLeads(leads, input.Query, input.Status), nil
}

func (uc *LeadQueryUseCase) Get(ctx context.Context, viewerID, leadID string) (*entity.Lead, error) {
	if verr := uc.checkActor(viewerID); verr != nil {
		return nil, verr
	}
	lead, err := uc.Repo.FindByID(ctx, leadID)
	if err != nil {
		return nil, uc.repositoryFailure("find", leadID, err)
	}
	if viewerID != entity.SupervisorID && lead.AdvisorID != viewerID {
		return nil, leadNotFound(leadID)
	}
	return lead, nil
}

func (uc *LeadQueryUseCase) Dashboard(ctx context.Context, viewerID string) (Stats, error) {
	leads, err := uc.visible(ctx, viewerID)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(leads), nil
}

// AdvisorLoads lists the roster in order with each advisor's in-flight count.
func (uc *LeadQueryUseCase) AdvisorLoads(ctx context.Context) ([]AdvisorLoad, error) {
	all, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, newRepositoryError("list", "", err)
	}
	counts := InFlightCounts(all, uc.Roster)
	loads := make([]AdvisorLoad, 0, len(uc.Roster))
	for _, adv := range uc.Roster {
		loads = append(loads, AdvisorLoad{Advisor: adv, InFlight: counts[adv.ID]})
	}
	return loads, nil
}
