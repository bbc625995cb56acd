package auth

import (
	"context"
)

// Service issues access tokens carrying {user_id, name, role} claims so the
// HTTP layer can resolve who is calling and with what role.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
}
