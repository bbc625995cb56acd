package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrSupervisorRoleRequired = errors.New("admin, hr or manager role required")
)
