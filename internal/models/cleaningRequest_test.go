package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatus_Predicates(t *testing.T) {
	tests := []struct {
		status        RequestStatus
		isOpenForWork bool
		isOpen        bool
	}{
		{StatusPending, true, true},
		{StatusInProgress, true, true},
		{StatusCompleted, false, true},
		{StatusApproved, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isOpenForWork, tt.status.IsOpenForWork())
			assert.Equal(t, tt.isOpen, tt.status.IsOpen())
		})
	}
}

func TestStatusGroups(t *testing.T) {
	// Completed blocks a new submission but is no longer actionable by the
	// sweeper; only approval closes the request.
	assert.NotContains(t, OpenForWorkStatuses, StatusCompleted)
	assert.Contains(t, OpenStatuses, StatusCompleted)
	assert.NotContains(t, OpenStatuses, StatusApproved)
}
