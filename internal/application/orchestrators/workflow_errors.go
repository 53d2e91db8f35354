package orchestrators

import (
	"errors"
	"fmt"
	"strings"

	"chemistmap/internal/domain/adminkey"
)

// Precondition errors shared by the member and admin workflows.
var (
	ErrDeletionCancelled     = fmt.Errorf("%w. deletion cancelled", adminkey.ErrIncorrect)
	ErrReassignmentCancelled = fmt.Errorf("%w. reassignment cancelled", adminkey.ErrIncorrect)
	ErrSendCancelled         = fmt.Errorf("%w. message not sent", adminkey.ErrIncorrect)
	ErrSameAdmin             = errors.New("member is already assigned to this admin")
	ErrNoTargetAdmin         = errors.New("please select an admin")
	ErrNoSelection           = errors.New("please select at least one member")
	ErrDeleteNotes           = errors.New("error deleting member notes")
)

// WorkflowError reports a multi-step workflow that stopped at Step. Applied
// lists the steps that had already been written and were not rolled back.
type WorkflowError struct {
	Workflow string
	Step     string
	Applied  []string
	Err      error
}

func (e *WorkflowError) Error() string {
	if len(e.Applied) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (already applied: %s)", e.Err, strings.Join(e.Applied, ", "))
}

func (e *WorkflowError) Unwrap() error { return e.Err }

// Partial reports whether earlier steps were written before the failure.
func (e *WorkflowError) Partial() bool { return len(e.Applied) > 0 }

// BulkFailure names one member a bulk workflow could not process.
type BulkFailure struct {
	MemberID string
	Name     string
	Err      error
}

// BulkResult is the per-member outcome of a bulk workflow. Successes are
// never rolled back when other members fail.
type BulkResult struct {
	Succeeded []string
	Failed    []BulkFailure
}

// Partial reports whether some members succeeded and some failed.
func (r BulkResult) Partial() bool {
	return len(r.Succeeded) > 0 && len(r.Failed) > 0
}

// Summary describes the failures in one line, naming every failed member.
func (r BulkResult) Summary() string {
	if len(r.Failed) == 0 {
		return ""
	}
	parts := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		name := f.Name
		if name == "" {
			name = f.MemberID
		}
		parts[i] = fmt.Sprintf("%s (%v)", name, f.Err)
	}
	return fmt.Sprintf("%d of %d failed: %s",
		len(r.Failed), len(r.Failed)+len(r.Succeeded), strings.Join(parts, "; "))
}
