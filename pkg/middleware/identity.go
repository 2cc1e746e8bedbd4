package middleware

import (
	"net/http"

	"srida/pkg/identity"
	"srida/pkg/logger"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// IdentityContext reads the verified user headers the upstream
// identity provider attaches and stores them in the request context.
// The core trusts them unconditionally. Requests without the headers
// pass through anonymous; handlers that require an identity reject
// them individually, since public listings need none.
func IdentityContext(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(HeaderUserID)
			roleStr := r.Header.Get(HeaderUserRole)

			if userID == "" && roleStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			role, ok := identity.ParseRole(roleStr)
			if userID == "" || !ok {
				log.Warn("Malformed identity headers",
					"request_id", RequestID(r.Context()),
					"role", roleStr,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Invalid identity"}`))
				return
			}

			ctx := identity.NewContext(r.Context(), identity.Identity{
				UserID: userID,
				Role:   role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
