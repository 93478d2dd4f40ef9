package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/dealer-leads/internal/entity"
)

// MemoryLeadRepository keeps leads in process. It backs tests and the
// LEADS_STORE=memory mode.
type MemoryLeadRepository struct {
	mu    sync.RWMutex
	leads map[string]entity.Lead
	now   func() time.Time
}

func NewMemoryLeadRepository() *MemoryLeadRepository {
	return &MemoryLeadRepository{
		leads: make(map[string]entity.Lead),
		now:   time.Now,
	}
}

func (r *MemoryLeadRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	lead.ID = uuid.NewString()
	lead.CreatedAt = r.now().UTC()
	lead.Version = 1
	r.leads[lead.ID] = lead.Clone()
	return nil
}

func (r *MemoryLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	lead := stored.Clone()
	return &lead, nil
}

func (r *MemoryLeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	leads := make([]entity.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		leads = append(leads, l.Clone())
	}
	sort.SliceStable(leads, func(i, j int) bool {
		if leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].ID > leads[j].ID
		}
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
	return leads, nil
}

func (r *MemoryLeadRepository) Update(ctx context.Context, id string, expectedVersion int64, patch entity.LeadPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	if stored.Version != expectedVersion {
		return entity.ErrVersionConflict
	}
	stored.Status = patch.Status
	stored.History = entity.CloneHistory(patch.History)
	stored.Version++
	r.leads[id] = stored
	return nil
}
