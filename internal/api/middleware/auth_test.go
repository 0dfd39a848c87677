package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/wkoning/portfolio-tracker/internal/domain"
)

type mockProfileLister struct {
	profiles []domain.Profile
	err      error
}

func (m *mockProfileLister) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	return m.profiles, m.err
}

var authProfiles = []domain.Profile{
	{ID: "p-1", Email: "admin@example.com", FullName: "Willem", Role: domain.RoleAdmin},
	{ID: "p-2", Email: "investor@example.com", FullName: "Jan", Role: domain.RoleInvestor},
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		headers    map[string]string
		wantStatus int
		wantID     string
	}{
		{
			name:       "known email header",
			path:       "/api/holdings",
			headers:    map[string]string{"X-User-Email": "admin@example.com"},
			wantStatus: http.StatusOK,
			wantID:     "p-1",
		},
		{
			name:       "email case insensitive",
			path:       "/api/holdings",
			headers:    map[string]string{"X-User-Email": "Admin@Example.COM"},
			wantStatus: http.StatusOK,
			wantID:     "p-1",
		},
		{
			name:       "bearer token carrying email",
			path:       "/api/holdings",
			headers:    map[string]string{"Authorization": "Bearer investor@example.com"},
			wantStatus: http.StatusOK,
			wantID:     "p-2",
		},
		{
			name:       "missing identity",
			path:       "/api/holdings",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown caller",
			path:       "/api/holdings",
			headers:    map[string]string{"X-User-Email": "stranger@example.com"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "health stays open",
			path:       "/health",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotProfile domain.Profile
			var gotOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotProfile, gotOK = ProfileFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := Auth(&mockProfileLister{profiles: authProfiles}, zerolog.Nop())(next)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantID != "" {
				if !gotOK || gotProfile.ID != tt.wantID {
					t.Errorf("profile in context = (%+v, %v), want id %s", gotProfile, gotOK, tt.wantID)
				}
			}
		})
	}
}

func TestAuthProfileListFailure(t *testing.T) {
	handler := Auth(&mockProfileLister{err: errors.New("unreachable")}, zerolog.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("next handler called despite profile lookup failure")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
	req.Header.Set("X-User-Email", "admin@example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name       string
		profile    *domain.Profile
		wantStatus int
	}{
		{"admin passes", &authProfiles[0], http.StatusOK},
		{"investor denied", &authProfiles[1], http.StatusForbidden},
		{"no profile denied", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/import", nil)
			if tt.profile != nil {
				ctx := context.WithValue(req.Context(), profileKey, *tt.profile)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			RequireAdmin(next)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
