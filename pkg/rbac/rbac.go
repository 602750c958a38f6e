// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"

	"github.com/saydalia/saydalia/pkg/middleware"
	"github.com/saydalia/saydalia/pkg/response"
)

const msgForbidden = "غير مصرح لك بهذا الإجراء"

// HasRole returns middleware that allows access only to users with one of
// the given roles. Requires middleware.Auth to have already run.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[middleware.RoleFromCtx(r.Context())] {
				response.Message(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
