package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"content-qa-cms/config"
	"content-qa-cms/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.Claims, secret []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{}, mw...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "role": c.GetString("role")})
	})
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware())
	valid := signed(t, &Claims{
		UserID: 7,
		Role:   "reviewer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, config.JWTSecret)

	w := serve(r, "Bearer "+valid)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"reviewer"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, valid).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer "+signed(t, &Claims{UserID: 7}, []byte("other"))).Code)

	expired := signed(t, &Claims{
		UserID:           7,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	}, config.JWTSecret)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer "+expired).Code)
}

func TestRequireRole(t *testing.T) {
	token := func(role models.UserRole) string {
		return "Bearer " + signed(t, &Claims{UserID: 1, Role: string(role)}, config.JWTSecret)
	}
	r := newRouter(AuthMiddleware(), RequireRole(models.RoleReviewer, models.RolePublisher))

	assert.Equal(t, http.StatusOK, serve(r, token(models.RoleReviewer)).Code)
	assert.Equal(t, http.StatusOK, serve(r, token(models.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, token(models.RoleWriter)).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(RequireRole(models.RoleReviewer)), "").Code)
}
