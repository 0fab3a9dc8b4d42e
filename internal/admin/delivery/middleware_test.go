package delivery

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminMiddleware(t *testing.T) {
	s := newTestServer(t)
	otherKey, err := SignAdminToken("other-secret", "ops", time.Hour)
	require.NoError(t, err)
	expired, err := SignAdminToken(testSecret, "ops", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token " + s.token, want: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + otherKey, want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + s.token, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/debug", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("non-admin role", func(t *testing.T) {
		_, err := validateAdminToken(userToken(t), testSecret)
		assert.Error(t, err)
	})

	t.Run("no secret configured", func(t *testing.T) {
		r := gin.New()
		r.GET("/x", AdminMiddleware(""), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func userToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestSignAdminToken(t *testing.T) {
	signed, err := SignAdminToken(testSecret, "ops", time.Hour)
	require.NoError(t, err)

	subject, err := validateAdminToken(signed, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "ops", subject)
}
