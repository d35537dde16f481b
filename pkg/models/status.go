package models

import "slices"

// Status represents the lifecycle state shared by workflow steps and participants.
type Status string

const (
	StatusWaiting   Status = "WAITING" // Initial state, not yet reached
	StatusSended    Status = "SENDED"  // Delivered to participants
	StatusInWork    Status = "IN_WORK"
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
	StatusRevision  Status = "REVISION"
)

var statuses = []Status{
	StatusWaiting,
	StatusSended,
	StatusInWork,
	StatusCompleted,
	StatusRejected,
	StatusRevision,
}

// IsValid reports whether s belongs to the status vocabulary.
func (s Status) IsValid() bool {
	return slices.Contains(statuses, s)
}

// ParseStatus converts a raw value into a Status.
func ParseStatus(value string) (Status, error) {
	status := Status(value)
	if !status.IsValid() {
		return "", &EnumError{Kind: "status", Value: value}
	}

	return status, nil
}

// StepType represents the kind of stage a workflow step implements.
type StepType string

const (
	StepTypeRegistration StepType = "REGISTRATION"
	StepTypeAgreement    StepType = "AGREEMENT"
	StepTypeSigning      StepType = "SIGNING"
	StepTypeIntroduction StepType = "INTRODUCTION"
	StepTypeDecision     StepType = "DECISION"
	StepTypeExecution    StepType = "EXECUTION"
	StepTypeRevoke       StepType = "REVOKE"
	StepTypeRevision     StepType = "REVISION"
)

var stepTypes = []StepType{
	StepTypeRegistration,
	StepTypeAgreement,
	StepTypeSigning,
	StepTypeIntroduction,
	StepTypeDecision,
	StepTypeExecution,
	StepTypeRevoke,
	StepTypeRevision,
}

// IsValid reports whether t belongs to the step type vocabulary.
func (t StepType) IsValid() bool {
	return slices.Contains(stepTypes, t)
}

// ParseStepType converts a raw value into a StepType.
func ParseStepType(value string) (StepType, error) {
	stepType := StepType(value)
	if !stepType.IsValid() {
		return "", &EnumError{Kind: "step type", Value: value}
	}

	return stepType, nil
}

