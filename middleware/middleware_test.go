package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	recordsRepo "estately/database/repository/records"
	userRepo "estately/database/repository/user"
	"estately/models"
	"estately/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	utils.Logger = zap.NewNop()
	utils.SetJWTSecret("middleware-test")
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newUsers(t *testing.T) (userRepo.UserRepository, *recordsRepo.MemoryStore) {
	t.Helper()
	store := recordsRepo.NewMemoryStore()
	ctx := context.Background()
	for _, u := range []models.User{
		{ID: "u1", Name: "Alice", Role: models.RoleBuyer},
		{ID: "a1", Name: "Root", Role: models.RoleAdmin},
		{ID: "x1", Name: "Nobody", Role: "guest"},
	} {
		_, err := store.Create(ctx, recordsRepo.Users, u)
		require.NoError(t, err)
	}
	return userRepo.NewStoreUserRepo(store), store
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	token, err := utils.GenerateToken(sub, models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func authRouter(users userRepo.UserRepository, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthMiddleware(users)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"userId": actor.UserID, "role": actor.Role})
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	users, store := newUsers(t)
	r := authRouter(users)

	w := get(r, bearer(t, "u1"))
	require.Equal(t, http.StatusOK, w.Code)
	// role claim in the token is ignored in favour of the stored role
	assert.JSONEq(t, `{"userId":"u1","role":"buyer"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, bearer(t, "ghost")).Code)
	assert.Equal(t, http.StatusForbidden, get(r, bearer(t, "x1")).Code)

	store.Close()
	assert.Equal(t, http.StatusServiceUnavailable, get(r, bearer(t, "u1")).Code)
}

func TestRequireRole(t *testing.T) {
	users, _ := newUsers(t)
	r := authRouter(users, RequireRole(models.RoleAdmin))

	assert.Equal(t, http.StatusOK, get(r, bearer(t, "a1")).Code)
	assert.Equal(t, http.StatusForbidden, get(r, bearer(t, "u1")).Code)

	bare := gin.New()
	bare.GET("/me", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, get(bare, "").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 4.3.2.1 "}, "9.9.9.9:1", "4.3.2.1"},
		{"remote", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"garbage forwarded falls back to real ip", map[string]string{"X-Forwarded-For": "<script>, 1.2.3.4", "X-Real-IP": "4.3.2.1"}, "9.9.9.9:1", "4.3.2.1"},
		{"garbage headers fall back to remote", map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "localhost"}, "9.9.9.9:1", "9.9.9.9"},
		{"forwarded ipv6", map[string]string{"X-Forwarded-For": "2001:db8::1"}, "9.9.9.9:1", "2001:db8::1"},
		{"ipv6 remote", nil, "[2001:db8::2]:443", "2001:db8::2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remote
			for k, v := range tc.header {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientIP(c))
		})
	}
}
