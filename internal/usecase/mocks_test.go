package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/dealer-leads/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id string, expectedVersion int64, patch entity.LeadPatch) error {
	args := m.Called(ctx, id, expectedVersion, patch)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func leadFor(id, advisorID string, status entity.Status) entity.Lead {
	return entity.Lead{
		ID:            id,
		Name:          "Lead " + id,
		Phone:         "5512345678",
		ModelInterest: "Civic",
		Source:        entity.SourcePiso,
		Status:        status,
		AdvisorID:     advisorID,
		Version:       1,
		History: []entity.HistoryEntry{
			{Type: entity.EntrySystem, Text: "Lead creado (piso) y asignado a X", Date: fixedNow},
		},
	}
}

func validFields() LeadFields {
	return LeadFields{
		Name:          "María López",
		Phone:         "5587654321",
		Email:         "maria@example.com",
		ModelInterest: "CR-V",
		Source:        "hdm",
	}
}
