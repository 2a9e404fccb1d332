package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.JobStatus
		ok       bool
	}{
		{model.JobPending, model.JobProcessing, true},
		{model.JobPending, model.JobFailed, true},
		{model.JobPending, model.JobCompleted, false},
		{model.JobProcessing, model.JobCompleted, true},
		{model.JobProcessing, model.JobFailed, true},
		{model.JobProcessing, model.JobPending, false},
		{model.JobCompleted, model.JobFailed, false},
		{model.JobFailed, model.JobProcessing, false},
		{model.JobProcessing, model.JobProcessing, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to))
		})
	}
}

func TestProgressOf(t *testing.T) {
	assert.Equal(t, 0, progressOf(0, 0))
	assert.Equal(t, 0, progressOf(3, -1))
	assert.Equal(t, 50, progressOf(5, 10))
	assert.Equal(t, 33, progressOf(1, 3))
	assert.Equal(t, 100, progressOf(12, 10))
}
