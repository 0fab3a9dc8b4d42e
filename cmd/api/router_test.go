package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pickup-backend/internal/admin/delivery"
	"pickup-backend/internal/pickup/repository"
	"pickup-backend/internal/pickup/usecase"
	"pickup-backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter() http.Handler {
	store := repository.NewMemoryStore()
	assignment := usecase.NewAssignmentEngine(usecase.Deps{
		Requests:   store.Requests(),
		Collectors: store.Collectors(),
		Users:      store.Users(),
	})
	admin := delivery.NewAdminHandler(assignment, store.Requests(), store.Collectors(), nil, nil, zap.NewNop())
	return NewHandler(admin, &config.Config{AdminJWTSecret: "secret"}, zap.NewNop()).Router()
}

func TestRouter(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/api/health", want: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{name: "admin needs token", method: http.MethodPost, path: "/api/admin/assign?town=Accra", want: http.StatusUnauthorized},
		{name: "preflight", method: http.MethodOptions, path: "/api/admin/debug", want: http.StatusNoContent},
		{name: "unknown route", method: http.MethodGet, path: "/api/emails", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_AdminAssign(t *testing.T) {
	r := newTestRouter()
	valid, err := delivery.SignAdminToken("secret", "ops", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/assign?town=Accra", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No pending requests found in Accra")
}
