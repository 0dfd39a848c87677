package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wkoning/portfolio-tracker/internal/domain"
)

// ProfileLister is the slice of the repository the auth middleware
// needs: the identity collaborator's read side.
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
}

// Auth resolves the caller to a stored profile. The dashboard frontend
// forwards the authenticated user's email in X-User-Email (a bearer
// token containing the email is accepted too); unknown callers get 401.
// The health endpoint stays open.
func Auth(profiles ProfileLister, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			email := callerEmail(r)
			if email == "" {
				WriteError(w, http.StatusUnauthorized, "Missing caller identity")
				return
			}

			all, err := profiles.ListProfiles(r.Context())
			if err != nil {
				log.Error().Err(err).Msg("Failed to list profiles for auth")
				WriteError(w, http.StatusInternalServerError, "Failed to resolve caller")
				return
			}

			for _, p := range all {
				if strings.EqualFold(strings.TrimSpace(p.Email), email) {
					ctx := context.WithValue(r.Context(), profileKey, p)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			WriteError(w, http.StatusUnauthorized, "Unknown caller")
		})
	}
}

func callerEmail(r *http.Request) string {
	if email := strings.TrimSpace(r.Header.Get("X-User-Email")); email != "" {
		return email
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// ProfileFromContext returns the authenticated caller's profile.
func ProfileFromContext(ctx context.Context) (domain.Profile, bool) {
	p, ok := ctx.Value(profileKey).(domain.Profile)
	return p, ok
}

// RequireAdmin gates a handler to admin callers; investors get a fixed
// denial payload, matching the import screen of the dashboard.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := ProfileFromContext(r.Context())
		if !ok || p.Role != domain.RoleAdmin {
			WriteError(w, http.StatusForbidden, "Import is restricted to admins")
			return
		}
		next(w, r)
	}
}
