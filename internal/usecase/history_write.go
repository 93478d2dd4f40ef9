package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

// mutation derives the next lead from the current one. changed=false means
// there is nothing to write.
type mutation func(current entity.Lead, actorName string, now time.Time) (next entity.Lead, changed bool, err error)

// appendWithRetry runs read, mutate, conditional write until the write lands
// or MaxWriteAttempts conflicts in a row have been seen.
func (d Deps) appendWithRetry(ctx context.Context, op, leadID, actorID string, mutate mutation) (*entity.Lead, bool, error) {
	actorName := ActorName(d.Roster, actorID)

	for attempt := 1; attempt <= d.MaxWriteAttempts; attempt++ {
		current, err := d.Repo.FindByID(ctx, leadID)
		if err != nil {
			return nil, false, d.repositoryFailure(op, leadID, err)
		}
		// advisors only touch their own leads; anything else stays invisible
		if actorID != entity.SupervisorID && current.AdvisorID != actorID {
			return nil, false, leadNotFound(leadID)
		}

		next, changed, err := mutate(*current, actorName, d.Now())
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return current, false, nil
		}

		err = d.Repo.Update(ctx, leadID, current.Version, entity.LeadPatch{
			Status:  next.Status,
			History: next.History,
		})
		if err == nil {
			next.Version = current.Version + 1
			return &next, true, nil
		}
		if !errors.Is(err, entity.ErrVersionConflict) {
			return nil, false, d.repositoryFailure(op, leadID, err)
		}

		d.Metrics.WriteConflict(op)
		d.Logger.DebugContext(ctx, "version conflict",
			"op", op, "lead_id", leadID, "attempt", attempt)
	}

	return nil, false, &DomainError{
		Code:    CodeConflict,
		Message: fmt.Sprintf("lead %s kept changing, gave up after %d attempts", leadID, d.MaxWriteAttempts),
	}
}

func (d Deps) repositoryFailure(op, leadID string, err error) error {
	if errors.Is(err, entity.ErrLeadNotFound) {
		return leadNotFound(leadID)
	}
	return newRepositoryError(op, leadID, err)
}

func leadNotFound(leadID string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: "lead not found: " + leadID,
	}
}
