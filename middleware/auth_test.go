package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-market-backend/auth"
	"go-market-backend/logger"
	"go-market-backend/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCodec() *auth.TokenCodec {
	return auth.NewTokenCodec("middleware-secret")
}

func issue(t *testing.T, codec *auth.TokenCodec, role string) string {
	t.Helper()
	token, err := codec.Issue(auth.Claims{UserID: "u-1", Email: "u@example.com", Name: "U", Role: role})
	require.NoError(t, err)
	return token
}

// setupRouter mounts a handler echoing the caller behind the given middleware.
func setupRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			c.JSON(http.StatusOK, gin.H{"user": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": claims.UserID})
	})
	r.GET("/", handlers...)
	return r
}

func do(r *gin.Engine, build func(*http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if build != nil {
		build(req)
	}
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAuth_MissingToken(t *testing.T) {
	w := do(setupRouter(Auth(newCodec())), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", errorOf(t, w))
}

func TestAuth_InvalidToken(t *testing.T) {
	w := do(setupRouter(Auth(newCodec())), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not.a.token")
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", errorOf(t, w))
}

func TestAuth_BearerHeader(t *testing.T) {
	codec := newCodec()
	token := issue(t, codec, auth.RoleUser)

	w := do(setupRouter(Auth(codec)), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"u-1"`)
}

func TestAuth_Cookie(t *testing.T) {
	codec := newCodec()
	token := issue(t, codec, auth.RoleUser)

	w := do(setupRouter(Auth(codec)), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"u-1"`)
}

func TestAuth_WrongScheme(t *testing.T) {
	codec := newCodec()
	token := issue(t, codec, auth.RoleUser)

	w := do(setupRouter(Auth(codec)), func(r *http.Request) {
		r.Header.Set("Authorization", "Basic "+token)
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", errorOf(t, w))
}

func TestOptionalAuth(t *testing.T) {
	codec := newCodec()
	r := setupRouter(OptionalAuth(codec))

	w := do(r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":""`)

	w = do(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer garbage")
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":""`)

	token := issue(t, codec, auth.RoleUser)
	w = do(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"u-1"`)
}

func TestAdmin(t *testing.T) {
	codec := newCodec()
	r := setupRouter(Auth(codec), Admin())

	w := do(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, auth.RoleUser))
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", errorOf(t, w))

	w = do(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, auth.RoleAdmin))
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_WithoutAuth(t *testing.T) {
	w := do(setupRouter(Admin()), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLogger_RecordsRoute(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(RequestLogger(logger.Nop(), m))
	r.GET("/products/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, path := range []string{"/products/a", "/products/b", "/nowhere"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP market_http_requests_total HTTP requests by method, route and status.
# TYPE market_http_requests_total counter
market_http_requests_total{method="GET",route="/products/:id",status="204"} 2
market_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "market_http_requests_total"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Nop()))
	r.GET("/", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorOf(t, w))
}

func TestRequestLogger_NilMetrics(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logger.Nop(), nil))
	r.GET("/", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
