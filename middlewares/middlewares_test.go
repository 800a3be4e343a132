package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"civic-issues-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	ttls    map[string]time.Duration
	failing bool
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCounter) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return 0, errors.New("connection refused")
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryCounter) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCounter) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key], nil
}

func limitedRouter(counter RateCounter, limit int) *gin.Engine {
	r := gin.New()
	r.POST("/issues", IssueRateLimiter(counter, limit, "issue-limit", zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func post(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/issues", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueRateLimiter(t *testing.T) {
	counter := newMemoryCounter()
	r := limitedRouter(counter, 2)

	assert.Equal(t, http.StatusCreated, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusCreated, post(r, "10.0.0.1").Code)
	assert.Equal(t, RateWindow, counter.ttls["issue-limit:10.0.0.1"])

	w := post(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "86400", w.Header().Get("Retry-After"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(86400), body["retry_after"])

	assert.Equal(t, http.StatusCreated, post(r, "10.0.0.2").Code)
}

func TestIssueRateLimiterCounterFailure(t *testing.T) {
	counter := newMemoryCounter()
	counter.failing = true

	w := post(limitedRouter(counter, 2), "10.0.0.1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server error"}`, w.Body.String())
}

func authRouter(t *testing.T) (*gin.Engine, *utils.TokenIssuer) {
	t.Helper()
	tokens, err := utils.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens, zap.NewNop()), func(c *gin.Context) {
		admin, ok := CurrentAdmin(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, admin)
	})
	return r, tokens
}

func TestAuthMiddlewareTokenSources(t *testing.T) {
	r, tokens := authRouter(t)
	token, err := tokens.Issue(utils.AdminIdentity{ID: "abc", Email: "a@city.gov", Role: "admin"})
	require.NoError(t, err)

	cases := map[string]func(*http.Request){
		"x-auth-token": func(req *http.Request) { req.Header.Set(TokenHeader, token) },
		"bearer":       func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) },
		"cookie":       func(req *http.Request) { req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) },
	}
	for name, setToken := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			setToken(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"id":"abc","email":"a@city.gov","role":"admin"}`, w.Body.String())
		})
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	r, _ := authRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(TokenHeader, "garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Token is not valid"}`, w.Body.String())
}

func TestRequireAuthUnless(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }

	for open, want := range map[bool]int{true: http.StatusOK, false: http.StatusUnauthorized} {
		r := gin.New()
		r.GET("/", RequireAuthUnless(open, deny), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, want, w.Code)
	}
}
