package ride

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsValid(t *testing.T) {
	valid := []Status{StatusPending, StatusAccepted, StatusStarted, StatusCompleted}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "status %q should be valid", s)
	}

	invalid := []Status{"", "cancelled", "PENDING", "done"}
	for _, s := range invalid {
		assert.False(t, s.IsValid(), "status %q should be invalid", s)
	}
}

func TestRequest_TransitionGuards(t *testing.T) {
	tests := []struct {
		status      Status
		canAccept   bool
		canStart    bool
		canComplete bool
		canCancel   bool
		isActive    bool
	}{
		{StatusPending, true, false, false, false, false},
		{StatusAccepted, false, true, false, true, true},
		{StatusStarted, false, false, true, false, true},
		{StatusCompleted, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			r := &Request{Status: tt.status}
			assert.Equal(t, tt.canAccept, r.CanAccept())
			assert.Equal(t, tt.canStart, r.CanStart())
			assert.Equal(t, tt.canComplete, r.CanComplete())
			assert.Equal(t, tt.canCancel, r.CanCancel())
			assert.Equal(t, tt.isActive, r.IsActive())
		})
	}
}

func TestRequest_IsAssignedTo(t *testing.T) {
	r := &Request{Status: StatusAccepted, DriverID: "driver-1"}

	assert.True(t, r.IsAssignedTo("driver-1"))
	assert.False(t, r.IsAssignedTo("driver-2"))

	unassigned := &Request{Status: StatusPending}
	assert.False(t, unassigned.IsAssignedTo(""), "unassigned ride must not match the empty driver id")
}
