package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"atomichabits/config"
	"atomichabits/model"
	"atomichabits/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() *services.TokenService {
	return services.NewTokenService(config.JWTConfig{
		SecretKey:  "test_secret_key",
		Issuer:     "atomichabits",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
}

type fixedBlacklist map[string]bool

func (b fixedBlacklist) IsTokenBlacklisted(_ context.Context, token string) bool {
	return b[token]
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	msg, _ := response["error"].(string)
	return msg
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := testTokens()

	access, err := tokens.GenerateToken("test-user-id")
	require.NoError(t, err)
	refresh, err := tokens.GenerateRefreshToken("test-user-id")
	require.NoError(t, err)
	revoked, err := tokens.GenerateToken("test-user-id")
	require.NoError(t, err)

	blacklist := fixedBlacklist{revoked: true}

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedError  string
	}{
		{"Valid Token", "Bearer " + access, http.StatusOK, ""},
		{"No Token", "", http.StatusUnauthorized, "Missing or invalid token"},
		{"Invalid Token Format", "Bearer invalid-token", http.StatusUnauthorized, "Invalid token"},
		{"Refresh Token", "Bearer " + refresh, http.StatusUnauthorized, "Invalid token"},
		{"Blacklisted Token", "Bearer " + revoked, http.StatusUnauthorized, "Token has been invalidated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/protected", AuthMiddleware(tokens, blacklist), func(c *gin.Context) {
				assert.Equal(t, "test-user-id", UserID(c))
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, w))
			}
		})
	}
}

func TestDemoAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", DemoAuthMiddleware("demo-user"), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, "demo-user", w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(config.RateLimitConfig{RPS: 0.001, Burst: 2})
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rl.evictIdle(time.Now().Add(time.Hour))
	assert.Empty(t, rl.visitors)
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestTracingMiddleware(), RecoveryMiddleware())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorMessage(t, w))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestSizeLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestSizeLimiter(8))
	router.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("way more than eight bytes")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

type memorySessions struct {
	sessions map[string]*model.Session
}

func (m *memorySessions) CreateSession(_ context.Context, s *model.Session) error {
	m.sessions[s.SessionID] = s
	return nil
}

func (m *memorySessions) GetSession(_ context.Context, id string) (*model.Session, error) {
	return m.sessions[id], nil
}

func (m *memorySessions) TouchSession(_ context.Context, id string, active bool) error {
	m.sessions[id].IsActive = active
	m.sessions[id].LastActivityAt = time.Now()
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memorySessions{sessions: make(map[string]*model.Session)}

	router := gin.New()
	router.POST("/login", func(c *gin.Context) {
		_, err := CreateSession(c, "u1", store)
		require.NoError(t, err)
		c.Status(http.StatusOK)
	})
	router.GET("/ping", SessionMiddleware(store), func(c *gin.Context) {
		_, ok := c.Get(ContextSessionKey)
		c.JSON(http.StatusOK, gin.H{"session": ok})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0")
	router.ServeHTTP(w, req)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Len(t, store.sessions, 1)

	var session *model.Session
	for _, s := range store.sessions {
		session = s
	}
	assert.Equal(t, "u1", session.UserID)
	assert.Contains(t, session.DisplayName, "Firefox on Linux")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"session":true}`, w.Body.String())

	session.LastActivityAt = time.Now().Add(-72 * time.Hour)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"session":false}`, w.Body.String())
	assert.False(t, session.IsActive)
}
