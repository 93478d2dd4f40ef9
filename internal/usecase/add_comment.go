package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

type AddCommentUseCase struct {
	Deps
}

func NewAddCommentUseCase(deps Deps) *AddCommentUseCase {
	return &AddCommentUseCase{Deps: deps.withDefaults()}
}

func (uc *AddCommentUseCase) Execute(ctx context.Context, input AddCommentInput) (*entity.Lead, error) {
	if verr := validateComment(input.Text); verr != nil {
		return nil, verr
	}
	if verr := uc.checkActor(input.ActorID); verr != nil {
		return nil, verr
	}

	lead, _, err := uc.appendWithRetry(ctx, "add_comment", input.LeadID, input.ActorID,
		func(current entity.Lead, actorName string, now time.Time) (entity.Lead, bool, error) {
			next, err := AddComment(current, input.Text, actorName, now)
			return next, err == nil, err
		})
	if err != nil {
		return nil, err
	}

	uc.Metrics.CommentAdded()
	uc.Logger.InfoContext(ctx, "lead commented", "lead_id", lead.ID, "actor", input.ActorID)
	uc.publish(ctx, entity.EventLeadCommented, *lead)

	return lead, nil
}
