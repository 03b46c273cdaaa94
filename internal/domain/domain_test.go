package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"student", "supervisor", "admin"} {
		r, ok := ParseRole(s)
		assert.True(t, ok, s)
		assert.Equal(t, Role(s), r)
	}

	_, ok := ParseRole("superuser")
	assert.False(t, ok)
}

func TestRoleCapabilities(t *testing.T) {
	assert.False(t, RoleStudent.CanOverrideSchedule())
	assert.True(t, RoleSupervisor.CanOverrideSchedule())
	assert.True(t, RoleAdmin.CanOverrideSchedule())

	assert.False(t, RoleStudent.CanModerate())
	assert.False(t, RoleSupervisor.CanModerate())
	assert.True(t, RoleAdmin.CanModerate())
}

func TestPendingStatusTerminal(t *testing.T) {
	assert.False(t, PendingStatusPending.Terminal())
	assert.False(t, PendingStatusFailed.Terminal())
	assert.True(t, PendingStatusDelivered.Terminal())
	assert.True(t, PendingStatusExpired.Terminal())
}

func TestMessageDisplayContent(t *testing.T) {
	m := Message{Content: "hello"}
	assert.Equal(t, "hello", m.DisplayContent())

	m.IsDeleted = true
	assert.Equal(t, DeletedContent, m.DisplayContent())
}
