// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/course-backend/internal/access"
	"github.com/carterperez-dev/templates/course-backend/internal/core"
)

const (
	PrincipalKey contextKey = "principal"
)

// PrincipalResolver turns a bearer token into a principal. A nil principal
// with a nil error means the token is unknown.
type PrincipalResolver interface {
	Authenticate(ctx context.Context, token string) (*access.Principal, error)
}

func Authenticator(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			principal, err := resolver.Authenticate(r.Context(), token)
			if err != nil {
				core.InternalServerError(w, err)
				return
			}

			if principal == nil {
				core.JSONError(
					w,
					core.UnauthorizedError("invalid or expired token"),
				)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// OptionalAuth attaches a principal when the token resolves and lets
// anonymous requests through untouched.
func OptionalAuth(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token != "" {
				principal, err := resolver.Authenticate(r.Context(), token)
				if err != nil {
					core.InternalServerError(w, err)
					return
				}
				if principal != nil {
					r = r.WithContext(WithPrincipal(r.Context(), principal))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireRole(roles ...access.Role) func(http.Handler) http.Handler {
	roleSet := make(map[access.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r.Context())

			if principal == nil {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if _, ok := roleSet[principal.Role]; !ok {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(access.RoleAdmin)(next)
}

func RequireCreator(next http.Handler) http.Handler {
	return RequireRole(access.RoleAdmin, access.RoleCreator)(next)
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func WithPrincipal(ctx context.Context, p *access.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func GetPrincipal(ctx context.Context) *access.Principal {
	if p, ok := ctx.Value(PrincipalKey).(*access.Principal); ok {
		return p
	}
	return nil
}
