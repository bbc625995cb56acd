package user

import (
	"context"
)

// Repository resolves identities and roles. The engines consume it for
// receiver validation and notification targeting; user CRUD itself lives
// outside this system.
type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)

	// Exists reports whether the id refers to a known user.
	Exists(ctx context.Context, id string) (bool, error)

	// FilterExisting returns the subset of ids that refer to known users,
	// preserving input order.
	FilterExisting(ctx context.Context, ids []string) ([]string, error)

	// ListByRoles returns all users holding any of the given roles.
	ListByRoles(ctx context.Context, roles []Role) ([]User, error)
}
