package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"modulegate_backend/internal/model"
	"modulegate_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-test-secret-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, role model.UserRole) string {
	t.Helper()
	tok, err := util.GenerateJWT("u1", role, "", secret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func serve(r *gin.Engine, auth string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/x", AuthMiddleware(secret), func(c *gin.Context) {
		assert.Equal(t, "u1", util.GetUserFromContext(c).UserID)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, ""))
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer nonsense"))
	assert.Equal(t, http.StatusOK, serve(r, token(t, model.Student)))
}

func TestTryAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/x", TryAuthMiddleware(secret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, ""))
	assert.Equal(t, http.StatusOK, serve(r, token(t, model.Student)))
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer nonsense"))
}

func TestRoleMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/x", AuthMiddleware(secret), RoleMiddleware(model.Teacher), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusForbidden, serve(r, token(t, model.Student)))
	assert.Equal(t, http.StatusOK, serve(r, token(t, model.Teacher)))
	assert.Equal(t, http.StatusOK, serve(r, token(t, model.Admin)))
}
