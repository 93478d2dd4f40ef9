package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/dealer-leads/internal/entity"
	"github.com/xavierca1/dealer-leads/internal/infra/database"
	"github.com/xavierca1/dealer-leads/internal/usecase"
)

func TestConcurrentCommentsAllSurvive(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryLeadRepository()
	const writers = 25

	deps := usecase.Deps{
		Repo:   repo,
		Roster: entity.DefaultRoster,
		// every writer may lose the race to all the others
		MaxWriteAttempts: writers + 1,
	}

	lead, err := usecase.NewCreateLeadUseCase(deps).Execute(ctx, usecase.CreateLeadInput{
		LeadFields: usecase.LeadFields{
			Name:          "Roberto Díaz",
			Phone:         "5511112222",
			ModelInterest: "Accord",
			Source:        "whatsapp",
		},
		ActorID: entity.SupervisorID,
	})
	require.NoError(t, err)

	comment := usecase.NewAddCommentUseCase(deps)

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := comment.Execute(ctx, usecase.AddCommentInput{
				LeadID:  lead.ID,
				Text:    fmt.Sprintf("nota %d", i),
				ActorID: entity.SupervisorID,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 1+writers)
	assert.Equal(t, int64(1+writers), stored.Version)

	seen := make(map[string]bool, writers)
	for _, h := range stored.History[1:] {
		assert.Equal(t, entity.EntryComment, h.Type)
		seen[h.Text] = true
	}
	assert.Len(t, seen, writers)
}

func TestConcurrentStatusAndCommentKeepBoth(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryLeadRepository()
	deps := usecase.Deps{Repo: repo, Roster: entity.DefaultRoster, MaxWriteAttempts: 10}

	lead, err := usecase.NewCreateLeadUseCase(deps).Execute(ctx, usecase.CreateLeadInput{
		LeadFields: usecase.LeadFields{Name: "Elena", Phone: "55", ModelInterest: "Pilot", Source: "llamada"},
		ActorID:    "adv3",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := usecase.NewChangeStatusUseCase(deps).Execute(ctx, usecase.ChangeStatusInput{
			LeadID: lead.ID, Status: "appointment", Note: "sábado", ActorID: "adv3",
		})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := usecase.NewAddCommentUseCase(deps).Execute(ctx, usecase.AddCommentInput{
			LeadID: lead.ID, Text: "prefiere gris", ActorID: entity.SupervisorID,
		})
		assert.NoError(t, err)
	}()
	wg.Wait()

	stored, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 3)
	assert.Equal(t, entity.StatusAppointment, stored.Status)
}
