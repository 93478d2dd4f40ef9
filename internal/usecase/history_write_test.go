package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/dealer-leads/internal/entity"
)

func TestChangeStatusUseCase_WritesWholePatch(t *testing.T) {
	repo := new(MockLeadRepository)
	current := leadFor("L1", "adv1", entity.StatusNew)
	repo.On("FindByID", mock.Anything, "L1").Return(&current, nil)
	repo.On("Update", mock.Anything, "L1", int64(1), mock.MatchedBy(func(p entity.LeadPatch) bool {
		return p.Status == entity.StatusContacted &&
			len(p.History) == 2 &&
			p.History[1].Text == "Cambio de new a contacted. Nota: ok" &&
			p.History[1].User == "Alejandro Hurtado"
	})).Return(nil)

	uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster, Now: fixedClock})
	out, err := uc.Execute(context.Background(), ChangeStatusInput{
		LeadID: "L1", Status: "contacted", Note: "ok", ActorID: "adv1",
	})

	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, int64(2), out.Lead.Version)
	repo.AssertExpectations(t)
}

func TestChangeStatusUseCase_EmptyNoteUsesQuickNote(t *testing.T) {
	repo := new(MockLeadRepository)
	current := leadFor("L1", "adv1", entity.StatusContacted)
	repo.On("FindByID", mock.Anything, "L1").Return(&current, nil)
	repo.On("Update", mock.Anything, "L1", int64(1), mock.Anything).Return(nil)

	uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster, Now: fixedClock})
	out, err := uc.Execute(context.Background(), ChangeStatusInput{
		LeadID: "L1", Status: "visit", ActorID: entity.SupervisorID,
	})

	require.NoError(t, err)
	last := out.Lead.History[len(out.Lead.History)-1]
	assert.Equal(t, "Cambio de contacted a visit. Nota: "+QuickStatusNote, last.Text)
	assert.Equal(t, "Supervisor", last.User)
}

func TestChangeStatusUseCase_NoteKeptVerbatim(t *testing.T) {
	tests := []struct {
		name string
		note string
		want string
	}{
		{"padded note", "  llamar después de las 5 \n", "Cambio de new a contacted. Nota:   llamar después de las 5 \n"},
		{"blank note", " \t ", "Cambio de new a contacted. Nota: " + QuickStatusNote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLeadRepository)
			current := leadFor("L1", "adv1", entity.StatusNew)
			repo.On("FindByID", mock.Anything, "L1").Return(&current, nil)
			repo.On("Update", mock.Anything, "L1", int64(1), mock.Anything).Return(nil)

			uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster, Now: fixedClock})
			out, err := uc.Execute(context.Background(), ChangeStatusInput{
				LeadID: "L1", Status: "contacted", Note: tt.note, ActorID: "adv1",
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Lead.History[len(out.Lead.History)-1].Text)
		})
	}
}

func TestChangeStatusUseCase_SameStatusDoesNotWrite(t *testing.T) {
	repo := new(MockLeadRepository)
	pub := new(MockPublisher)
	current := leadFor("L1", "adv1", entity.StatusVisit)
	repo.On("FindByID", mock.Anything, "L1").Return(&current, nil)

	uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster, Publisher: pub, Now: fixedClock})
	out, err := uc.Execute(context.Background(), ChangeStatusInput{
		LeadID: "L1", Status: "visit", ActorID: "adv1",
	})

	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Len(t, out.Lead.History, 1)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishLeadEvent", mock.Anything, mock.Anything)
}

func TestChangeStatusUseCase_InvalidStatusBeforeRead(t *testing.T) {
	repo := new(MockLeadRepository)

	uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster})
	_, err := uc.Execute(context.Background(), ChangeStatusInput{LeadID: "L1", Status: "won", ActorID: "adv1"})

	assert.True(t, IsValidationError(err))
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestChangeStatusUseCase_RetriesOnConflict(t *testing.T) {
	repo := new(MockLeadRepository)

	first := leadFor("L1", "adv1", entity.StatusNew)
	second := leadFor("L1", "adv1", entity.StatusNew)
	second.Version = 2
	second.History = append(second.History, entity.HistoryEntry{Type: entity.EntryComment, Text: "otro", Date: fixedNow})

	repo.On("FindByID", mock.Anything, "L1").Return(&first, nil).Once()
	repo.On("FindByID", mock.Anything, "L1").Return(&second, nil).Once()
	repo.On("Update", mock.Anything, "L1", int64(1), mock.Anything).Return(entity.ErrVersionConflict).Once()
	repo.On("Update", mock.Anything, "L1", int64(2), mock.MatchedBy(func(p entity.LeadPatch) bool {
		// the concurrent comment survives
		return len(p.History) == 3 && p.History[1].Text == "otro"
	})).Return(nil).Once()

	uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster, Now: fixedClock})
	out, err := uc.Execute(context.Background(), ChangeStatusInput{LeadID: "L1", Status: "contacted", ActorID: "adv1"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Lead.Version)
	repo.AssertExpectations(t)
}

func TestChangeStatusUseCase_ConflictExhausted(t *testing.T) {
	repo := new(MockLeadRepository)
	current := leadFor("L1", "adv1", entity.StatusNew)
	repo.On("FindByID", mock.Anything, "L1").Return(&current, nil)
	repo.On("Update", mock.Anything, "L1", int64(1), mock.Anything).Return(entity.ErrVersionConflict)

	uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster, MaxWriteAttempts: 2})
	_, err := uc.Execute(context.Background(), ChangeStatusInput{LeadID: "L1", Status: "lost", ActorID: "adv1"})

	require.Error(t, err)
	assert.True(t, IsConflictError(err))
	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestChangeStatusUseCase_NotFound(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("FindByID", mock.Anything, "nope").Return(nil, entity.ErrLeadNotFound)

	uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster})
	_, err := uc.Execute(context.Background(), ChangeStatusInput{LeadID: "nope", Status: "lost", ActorID: "adv1"})

	assert.True(t, IsNotFoundError(err))
}

func TestChangeStatusUseCase_AdvisorCannotTouchOthersLeads(t *testing.T) {
	repo := new(MockLeadRepository)
	current := leadFor("L1", "adv2", entity.StatusNew)
	repo.On("FindByID", mock.Anything, "L1").Return(&current, nil)

	uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster})
	_, err := uc.Execute(context.Background(), ChangeStatusInput{LeadID: "L1", Status: "lost", ActorID: "adv1"})

	assert.True(t, IsNotFoundError(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeStatusUseCase_RepositoryFailureCarriesOp(t *testing.T) {
	repo := new(MockLeadRepository)
	current := leadFor("L1", "adv1", entity.StatusNew)
	boom := errors.New("disk full")
	repo.On("FindByID", mock.Anything, "L1").Return(&current, nil)
	repo.On("Update", mock.Anything, "L1", int64(1), mock.Anything).Return(boom)

	uc := NewChangeStatusUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster})
	_, err := uc.Execute(context.Background(), ChangeStatusInput{LeadID: "L1", Status: "sold", ActorID: "adv1"})

	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "change_status", te.Op)
	assert.Equal(t, "L1", te.LeadID)
	assert.ErrorIs(t, err, boom)
}

func TestAddCommentUseCase(t *testing.T) {
	repo := new(MockLeadRepository)
	pub := new(MockPublisher)
	current := leadFor("L1", "adv4", entity.StatusAppointment)
	repo.On("FindByID", mock.Anything, "L1").Return(&current, nil)
	repo.On("Update", mock.Anything, "L1", int64(1), mock.MatchedBy(func(p entity.LeadPatch) bool {
		return p.Status == entity.StatusAppointment && len(p.History) == 2
	})).Return(nil)
	pub.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(ev entity.LeadEvent) bool {
		return ev.Type == entity.EventLeadCommented && ev.Text == "trae a su esposa" && ev.Actor == "Lucy Figueroa"
	})).Return(nil)

	uc := NewAddCommentUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster, Publisher: pub, Now: fixedClock})
	lead, err := uc.Execute(context.Background(), AddCommentInput{LeadID: "L1", Text: "trae a su esposa", ActorID: "adv4"})

	require.NoError(t, err)
	assert.Equal(t, entity.EntryComment, lead.History[1].Type)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestAddCommentUseCase_BlankNeverReads(t *testing.T) {
	repo := new(MockLeadRepository)

	uc := NewAddCommentUseCase(Deps{Repo: repo, Roster: entity.DefaultRoster})
	_, err := uc.Execute(context.Background(), AddCommentInput{LeadID: "L1", Text: "  ", ActorID: "adv4"})

	assert.True(t, IsValidationError(err))
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
