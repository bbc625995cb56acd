package http

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/skulk0156/emsbackend/internal/domain/auth"
	"github.com/skulk0156/emsbackend/internal/domain/task"
	"github.com/skulk0156/emsbackend/internal/domain/user"
)

// actorFromRequest resolves the acting principal from the verified token.
// Services receive the actor explicitly instead of digging through the
// request context themselves.
func actorFromRequest(r *http.Request) (task.Actor, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return task.Actor{}, auth.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return task.Actor{}, auth.ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	role, ok := claims["role"].(string)
	if !ok {
		return task.Actor{}, auth.ErrInvalidToken
	}

	return task.Actor{
		UserID: userID,
		Name:   name,
		Role:   user.Role(role),
	}, nil
}
