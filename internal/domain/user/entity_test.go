package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleIsSupervisory(t *testing.T) {
	assert.True(t, RoleAdmin.IsSupervisory())
	assert.True(t, RoleHR.IsSupervisory())
	assert.True(t, RoleManager.IsSupervisory())
	assert.False(t, RoleEmployee.IsSupervisory())
	assert.False(t, Role("intern").IsSupervisory())
}

func TestRoleCanCreateTasks(t *testing.T) {
	assert.True(t, RoleAdmin.CanCreateTasks())
	assert.True(t, RoleManager.CanCreateTasks())
	assert.False(t, RoleHR.CanCreateTasks())
	assert.False(t, RoleEmployee.CanCreateTasks())
}
