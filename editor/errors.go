package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStepType is returned when a server record carries a step
	// type the editor cannot represent.
	ErrUnknownStepType = errors.New("unknown step type")
	ErrStepNotFound    = errors.New("step not found")
	ErrCancelled       = errors.New("cancelled by user")
	// ErrBusy is returned when a save is requested while another one runs.
	ErrBusy     = errors.New("save already in progress")
	ErrNotFound = errors.New("automation not found")
)

// LoadError wraps any failure while loading the editor view.
type LoadError struct {
	Part string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Part, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// CommitError reports the phase in which a commit stopped.
type CommitError struct {
	Phase  string
	StepID string
	Err    error
}

func (e *CommitError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("commit %s step %s: %v", e.Phase, e.StepID, e.Err)
	}
	return fmt.Sprintf("commit %s: %v", e.Phase, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
