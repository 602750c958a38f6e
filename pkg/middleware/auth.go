package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/pkg/auth"
	"github.com/saydalia/saydalia/pkg/response"
)

// Arabic messages for the auth boundary.
const (
	msgLoginRequired = "يجب تسجيل الدخول"
	msgBadToken      = "جلسة غير صالحة، يرجى تسجيل الدخول مجدداً"
	msgAdminOnly     = "غير مصرح لك بهذا الإجراء"
)

// UserResolver loads the live user record behind a token subject. The
// token alone is not trusted for role checks: a deleted account or a
// changed role must take effect before the token expires.
type UserResolver func(ctx context.Context, userID string) (models.User, error)

type userCtxKey struct{}

// Auth returns a middleware that requires a valid Bearer token and
// resolves its subject to a live user stored in the request context.
func Auth(resolve UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				response.Message(w, http.StatusUnauthorized, msgLoginRequired)
				return
			}

			claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				response.Message(w, http.StatusUnauthorized, msgBadToken)
				return
			}

			user, err := resolve(r.Context(), claims.UserID)
			if err != nil {
				response.Message(w, http.StatusUnauthorized, msgBadToken)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects non-admin callers. Wire it after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromCtx(r.Context())
		if !ok {
			response.Message(w, http.StatusUnauthorized, msgLoginRequired)
			return
		}
		if !user.IsAdmin() {
			response.Message(w, http.StatusForbidden, msgAdminOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromCtx returns the authenticated user stored by Auth.
func UserFromCtx(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(models.User)
	return user, ok
}

// UserIDFromCtx returns the authenticated user's id hex, or "".
func UserIDFromCtx(ctx context.Context) string {
	if user, ok := UserFromCtx(ctx); ok {
		return user.ID.Hex()
	}
	return ""
}

// RoleFromCtx returns the authenticated user's role, or "".
func RoleFromCtx(ctx context.Context) string {
	if user, ok := UserFromCtx(ctx); ok {
		return user.Role
	}
	return ""
}
