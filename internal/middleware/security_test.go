package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hwmonitor/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedToken = "aaaaaaaaaa.bbbbbbbbbb.cccccccccc"

type stubValidator struct {
	claims *services.CustomClaims
	err    error
	seen   []string
}

func (s *stubValidator) ValidateToken(token string) (*services.CustomClaims, error) {
	s.seen = append(s.seen, token)
	return s.claims, s.err
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		name := ""
		if v, ok := c.Get(ClaimsKey); ok {
			name = v.(*services.CustomClaims).ClientName
		}
		c.String(http.StatusOK, name)
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	validator := &stubValidator{claims: &services.CustomClaims{ClientName: "desk"}}
	r := newEngine(AuthMiddleware(validator, NewSecurityLogger()))

	t.Run("missing token", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed token never reaches validator", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer short")
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, validator.seen)
	})

	t.Run("header token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+wellFormedToken)
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "desk", w.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping?token="+wellFormedToken, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	r := newEngine(AuthMiddleware(&stubValidator{err: errors.New("expired")}, NewSecurityLogger()))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+wellFormedToken)
	w := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimitMiddleware(NewRateLimiter(0.001, 2)))

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine(CORSMiddleware([]string{"http://localhost:1420", "tauri.localhost"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:1420")
	w := serve(r, req)
	assert.Equal(t, "http://localhost:1420", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://tauri.localhost")
	w = serve(r, req)
	assert.Equal(t, "https://tauri.localhost", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:1420")
	w = serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOriginAllowedWithEmptyList(t *testing.T) {
	assert.True(t, OriginAllowed("http://anything", nil))
	assert.False(t, OriginAllowed("", nil))
}

func TestInputValidator(t *testing.T) {
	v := NewInputValidator()
	assert.True(t, v.ValidateClientName("desk-01.local"))
	assert.False(t, v.ValidateClientName("bad name"))
	assert.False(t, v.ValidateClientName(""))
	assert.True(t, v.ValidateToken(wellFormedToken))
	assert.False(t, v.ValidateToken("a.b"))
}
