package models

type FieldKind string

const (
	FieldText         FieldKind = "text"
	FieldNumber       FieldKind = "number"
	FieldFileUpload   FieldKind = "file_upload"
	FieldSingleChoice FieldKind = "single_choice"
)

// FormField is one wizard input as observed on the current step.
// Fields are read fresh every step and never cached across steps.
type FormField struct {
	ID           string
	Label        string
	Kind         FieldKind
	CurrentValue string
	Required     bool
	Options      []string
}

func (f FormField) Prefilled() bool {
	return f.CurrentValue != ""
}

type StepOutcome string

const (
	StepContinue  StepOutcome = "CONTINUE"
	StepSubmitted StepOutcome = "SUBMITTED"
	StepStuck     StepOutcome = "STUCK"
	StepDiscarded StepOutcome = "DISCARDED"
)

// Control is the navigation control a wizard surface currently offers.
type Control int

const (
	ControlNone Control = iota
	ControlContinue
	ControlReview
	ControlSubmit
	ControlDismiss
	// ControlConfirmDiscard is never reported as actionable; it is only
	// activated as the second half of the dismiss sequence.
	ControlConfirmDiscard
)

func (c Control) String() string {
	switch c {
	case ControlContinue:
		return "continue"
	case ControlReview:
		return "review"
	case ControlSubmit:
		return "submit"
	case ControlDismiss:
		return "dismiss"
	case ControlConfirmDiscard:
		return "confirm_discard"
	default:
		return "none"
	}
}
