// Package models defines the core domain models for document circulation and workflow routing.
package models

import (
	"slices"
	"time"
)

// Workflow is the ordered approval route attached to one document.
type Workflow struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Steps      []*WorkflowStep `json:"steps"`
	CreatedAt  time.Time       `json:"created_at"`
}

// FirstStep returns the step with the lowest order, or nil when the route is empty.
func (w *Workflow) FirstStep() *WorkflowStep {
	var first *WorkflowStep

	for _, step := range w.Steps {
		if first == nil || step.Order < first.Order {
			first = step
		}
	}

	return first
}

// SortSteps orders the steps by their order key, keeping submission order on ties.
func (w *Workflow) SortSteps() {
	slices.SortStableFunc(w.Steps, func(a, b *WorkflowStep) int {
		return a.Order - b.Order
	})
}

