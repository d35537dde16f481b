package models

import (
	"slices"
	"time"
)

// WorkflowStep is one stage of a route. Order is the ordering key and starts at 1.
type WorkflowStep struct {
	ID           string                 `json:"id"`
	WorkflowID   string                 `json:"workflow_id"`
	StepType     StepType               `json:"step_type"`
	Status       Status                 `json:"status"`
	Order        int                    `json:"order"`
	IsActive     bool                   `json:"is_active"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	FinishedAt   *time.Time             `json:"finished_at,omitempty"`
	Participants []*WorkflowParticipant `json:"participants"`
}

// WorkflowParticipant is a user assigned to act within one step.
type WorkflowParticipant struct {
	ID            string     `json:"id"`
	StepID        string     `json:"step_id"`
	UserID        string     `json:"user_id"`
	Status        Status     `json:"status"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Comment       *string    `json:"comment,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	IsResponsible bool       `json:"is_responsible"`
}

// HasParticipant reports whether userID takes part in the step.
func (s *WorkflowStep) HasParticipant(userID string) bool {
	return slices.ContainsFunc(s.Participants, func(p *WorkflowParticipant) bool {
		return p.UserID == userID
	})
}

// IsReached reports whether the step is currently active or already finished.
func (s *WorkflowStep) IsReached() bool {
	return s.IsActive || s.FinishedAt != nil
}
