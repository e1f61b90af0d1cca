// Package rbac gates route groups by role name. It reads the role that
// middleware.AuthMiddleware parked on the request context, so it must
// sit after that middleware in the chain.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/feria/pkg/middleware"
	"github.com/shashiranjanraj/feria/pkg/response"
)

// HasRole admits only requests whose authenticated role is one of
// roles. Anything else, including anonymous requests, gets a 403.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok {
				response.Forbidden(w)
				return
			}
			if _, permitted := allowed[role]; !permitted {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guest blocks already-authenticated users, for endpoints like login
// where a second session makes no sense.
func Guest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, authed := middleware.UserIDFromCtx(r); authed {
			response.Error(w, http.StatusConflict, "Already authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
