package chi

import (
	"net/http"
	"strings"

	"github.com/ainative-studio/publicfounders/internal/domain/intro"
)

// memberHeader carries the authenticated member id, injected by the platform
// gateway in front of this service.
const memberHeader = "X-Member-ID"

// exemptPaths bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// BearerAuthMiddleware validates the service-to-service Bearer token. With no
// keys configured authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			if _, ok := validKeys[auth[len(bearerPrefix):]]; !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// actorFrom resolves the acting member from the request. Missing header means
// the caller is not acting as a member.
func actorFrom(r *http.Request) (intro.Actor, bool) {
	memberID := strings.TrimSpace(r.Header.Get(memberHeader))
	if memberID == "" {
		return intro.Actor{}, false
	}
	return intro.Actor{MemberID: memberID}, true
}
