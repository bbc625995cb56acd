package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// SupervisoryRoles are the roles notified about employee punch activity.
var SupervisoryRoles = []Role{RoleAdmin, RoleHR, RoleManager}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	TeamID       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsSupervisory reports whether the role carries oversight duties.
func (r Role) IsSupervisory() bool {
	return r == RoleAdmin || r == RoleHR || r == RoleManager
}

// CanCreateTasks reports whether the role may create tasks.
func (r Role) CanCreateTasks() bool {
	return r == RoleAdmin || r == RoleManager
}
