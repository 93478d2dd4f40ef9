package usecase

import "github.com/xavierca1/dealer-leads/internal/entity"

// LeadFields are the contact attributes captured at intake.
type LeadFields struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	ModelInterest string `json:"model_interest"`
	Source        string `json:"source"`
}

type CreateLeadInput struct {
	LeadFields
	// AdvisorID is a manual pick; empty or "auto" balances by load.
	// Only the supervisor's pick is honoured.
	AdvisorID string `json:"advisor_id,omitempty"`
	ActorID   string `json:"-"`
}

type ChangeStatusInput struct {
	LeadID  string `json:"-"`
	Status  string `json:"status"`
	Note    string `json:"note"`
	ActorID string `json:"-"`
}

type AddCommentInput struct {
	LeadID  string `json:"-"`
	Text    string `json:"text"`
	ActorID string `json:"-"`
}

type ListLeadsInput struct {
	ViewerID string
	Query    string
	Status   string
}

type AdvisorLoad struct {
	entity.Advisor
	InFlight int `json:"in_flight"`
}
