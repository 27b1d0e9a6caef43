package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func signed(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "pos",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func authRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/x", JWTAuth(secret), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Subject)
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	r := authRouter("s3cret")
	valid := signed(t, "s3cret", time.Now().Add(time.Hour))

	cases := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"no token", "/x", "", http.StatusUnauthorized},
		{"bearer", "/x", "Bearer " + valid, http.StatusOK},
		{"query token", "/x?access_token=" + valid, "", http.StatusOK},
		{"wrong secret", "/x", "Bearer " + signed(t, "other", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", "/x", "Bearer " + signed(t, "s3cret", time.Now().Add(-time.Minute)), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, "pos", w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestErrorHandlerAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	r.GET("/err", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	for _, path := range []string{"/err", "/panic"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.JSONEq(t, `{"detail":"Erreur interne du serveur"}`, w.Body.String(), path)
	}
}

func corsRouter(origins ...string) *gin.Engine {
	r := gin.New()
	r.Use(CORS(origins))
	r.PATCH("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func preflight(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSPreflight(t *testing.T) {
	w := preflight(corsRouter("*"), "http://till.local")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestCORSAllowList(t *testing.T) {
	r := corsRouter("http://till.local")

	w := preflight(r, "http://till.local")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://till.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = preflight(r, "http://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// Non-preflight requests from other origins still reach the handler; the
	// browser drops the response for lack of CORS headers.
	req := httptest.NewRequest(http.MethodPatch, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter("test", 2, time.Minute)
	l.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/login", LoginRateLimiter(l), func(c *gin.Context) { c.Status(http.StatusOK) })
	hit := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit())
	assert.Equal(t, http.StatusOK, hit())
	assert.Equal(t, http.StatusTooManyRequests, hit())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, l.Purge())
	assert.Equal(t, http.StatusOK, hit())
}
