package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid job transition")
)

// pending → processing → completed | failed; pending может сразу упасть в failed.
var jobTransitions = map[model.JobStatus][]model.JobStatus{
	model.JobPending:    {model.JobProcessing, model.JobFailed},
	model.JobProcessing: {model.JobCompleted, model.JobFailed},
}

// CanTransition reports whether a job may move from one status to another.
func CanTransition(from, to model.JobStatus) bool {
	return slices.Contains(jobTransitions[from], to)
}

func checkTransition(from, to model.JobStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func isTerminal(s model.JobStatus) bool {
	return s == model.JobCompleted || s == model.JobFailed
}

func progressOf(processed, total int) int {
	if total <= 0 {
		return 0
	}
	p := processed * 100 / total
	return min(max(p, 0), 100)
}
