package auth

import (
	"net/http"
	"strings"

	apperrors "ctxmemory/pkg/errors"
)

// Middleware authenticates every request from X-API-Key or an
// Authorization: Bearer header, rejecting unknown keys with a single
// error kind rather than a detailed reason. When required is false, a
// missing or unknown key passes through with no principal attached;
// capability checks happen later, in the mediator's auth behavior, which
// reports auth_required for a request without a principal.
func Middleware(table KeyTable, required bool, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractKey(r)
			principal, err := table.Lookup(key)
			if err != nil {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				onError(w, r, apperrors.NewAuthRequiredError("missing or unknown API key"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func extractKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}

// RequireCapability returns an auth_forbidden AppError if principal p
// lacks cap, or — for delete_context specifically —
// is an agent principal: agent credentials can never trigger a hard
// delete, even transitively.
func RequireCapability(p Principal, cap Capability) error {
	if cap == CapDeleteContext && p.IsAgent {
		return apperrors.NewForbiddenError("hard delete requires a human principal")
	}
	if !p.Can(cap) {
		return apperrors.NewForbiddenError("principal role " + string(p.Role) + " lacks capability " + string(cap))
	}
	return nil
}
