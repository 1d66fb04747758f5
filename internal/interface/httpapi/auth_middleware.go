package httpapi

import (
	"net/http"

	"flightplan-service/internal/domain/repository"
	"flightplan-service/pkg/logger"
	"flightplan-service/pkg/metrics"
)

const basicRealm = `Basic realm="flightplan"`

// NewBasicAuthMiddleware enforces HTTP Basic credentials checked against users.
//
// On success the authenticated user is stored in the request context.
// Lookup faults are logged and answered like a rejection.
func NewBasicAuthMiddleware(users repository.UserService, log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, r, m, "missing_credentials", "missing or malformed Authorization header")
				return
			}

			user, err := users.Authenticate(r.Context(), username, password)
			if err != nil {
				log.Error("Credential lookup failed", "username", username, "error", err)
				unauthorized(w, r, m, "lookup_error", "unauthorized")
				return
			}
			if user == nil {
				unauthorized(w, r, m, "rejected", "invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, m *metrics.Metrics, reason, message string) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
	w.Header().Set("WWW-Authenticate", basicRealm)
	writeError(w, r, http.StatusUnauthorized, message)
}
