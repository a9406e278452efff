package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "gladiadores/pkg/memcache"
	"gladiadores/pkg/utils"
)

type staticRoles map[uuid.UUID]string

func (s staticRoles) HasRole(_ context.Context, accountID uuid.UUID, role string) (bool, error) {
	return s[accountID] == role, nil
}

func newTestRouter(issuer *utils.TokenIssuer, denylist mem.TokenStore, roles RoleChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceIDMiddleware())
	auth := JWTAuthMiddleware(issuer, denylist)

	r.GET("/me", auth, func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.String(http.StatusOK, id.String())
	})
	r.GET("/admin", auth, RoleMiddleware(roles, "admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", time.Hour)
	denylist := mem.NewLocalTokens()
	userID := uuid.New()
	token, claims, err := issuer.CreateToken(userID, []string{"user"})
	require.NoError(t, err)

	r := newTestRouter(issuer, denylist, staticRoles{})

	t.Run("missing header", func(t *testing.T) {
		w := do(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other, _, err := utils.NewTokenIssuer("other", time.Hour).CreateToken(userID, nil)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := do(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
	})

	t.Run("query token only for event streams", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil)
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

		req = httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil)
		req.Header.Set("Accept", "text/event-stream")
		assert.Equal(t, http.StatusOK, do(r, req).Code)
	})

	t.Run("logged out token", func(t *testing.T) {
		require.NoError(t, denylist.Set(context.Background(), claims.ID, claims.UserID, time.Hour))
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
	})
}

func TestRoleMiddleware(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", time.Hour)
	admin, user := uuid.New(), uuid.New()
	r := newTestRouter(issuer, nil, staticRoles{admin: "admin", user: "user"})

	adminToken, _, err := issuer.CreateToken(admin, []string{"admin"})
	require.NoError(t, err)
	userToken, _, err := issuer.CreateToken(user, []string{"user"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusNoContent, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", NewRateLimiter(0.001, 2).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		return do(r, req).Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"), "buckets are per client")
}

func TestRateLimiterSweepsIdleBucketsPeriodically(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(0.001, 1)
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))

	clock = clock.Add(5 * time.Minute)
	assert.True(t, l.allow("b"))
	assert.Len(t, l.visitors, 2, "no sweep before the idle period has passed")

	clock = clock.Add(6 * time.Minute)
	assert.True(t, l.allow("c"))
	assert.NotContains(t, l.visitors, "a", "idle bucket swept")
	assert.Contains(t, l.visitors, "b")

	clock = clock.Add(time.Minute)
	assert.True(t, l.allow("a"), "a swept client starts with a fresh bucket")
}
