package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/skulk0156/emsbackend/internal/domain/user"
	"github.com/skulk0156/emsbackend/internal/handler/http/response"
)

// RequireSupervisor gates routes to admin, hr and manager roles.
func RequireSupervisor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrSupervisorRoleRequired)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, user.ErrSupervisorRoleRequired)
			return
		}

		if !user.Role(roleStr).IsSupervisory() {
			response.HandleError(w, user.ErrSupervisorRoleRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
