package config_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"pickup-backend/internal/admin/delivery"
	"pickup-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AdminSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{name: "unset", setup: func(t *testing.T) {
			t.Setenv("ADMIN_JWT_SECRET", "")
			require.NoError(t, os.Unsetenv("ADMIN_JWT_SECRET"))
		}},
		{name: "empty", setup: func(t *testing.T) { t.Setenv("ADMIN_JWT_SECRET", "") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			cfg := config.Load()
			assert.Empty(t, cfg.AdminJWTSecret)

			// No secret means no token can be accepted, whatever it was signed with
			forged, err := delivery.SignAdminToken("change-me-in-production", "ops", time.Hour)
			require.NoError(t, err)

			r := gin.New()
			r.GET("/admin", delivery.AdminMiddleware(cfg.AdminJWTSecret), func(c *gin.Context) { c.Status(http.StatusOK) })
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+forged)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		})
	}

	t.Run("set", func(t *testing.T) {
		t.Setenv("ADMIN_JWT_SECRET", "s3cret")
		assert.Equal(t, "s3cret", config.Load().AdminJWTSecret)
	})
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REASSIGN_BUFFER_HOURS", "not-a-number")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SCHEDULE_MISSED", "")

	cfg := config.Load()
	assert.Equal(t, 2, cfg.ReassignBufferHours)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "0 1 * * *", cfg.ScheduleMissed)
}
