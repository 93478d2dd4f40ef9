package realtime

import (
	"context"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

// NotifyingRepository decorates a lead repository so that every successful
// write is followed by a change notification.
type NotifyingRepository struct {
	entity.LeadRepositoryInterface
	Notifier ChangeNotifier
}

func NewNotifyingRepository(repo entity.LeadRepositoryInterface, notifier ChangeNotifier) *NotifyingRepository {
	return &NotifyingRepository{LeadRepositoryInterface: repo, Notifier: notifier}
}

func (r *NotifyingRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if err := r.LeadRepositoryInterface.Create(ctx, lead); err != nil {
		return err
	}
	r.Notifier.LeadsChanged(context.WithoutCancel(ctx))
	return nil
}

func (r *NotifyingRepository) Update(ctx context.Context, id string, expectedVersion int64, patch entity.LeadPatch) error {
	if err := r.LeadRepositoryInterface.Update(ctx, id, expectedVersion, patch); err != nil {
		return err
	}
	r.Notifier.LeadsChanged(context.WithoutCancel(ctx))
	return nil
}
