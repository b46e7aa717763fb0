package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/contexts"
	"github.com/bookhaven/bookhaven/internal/policy"
	"github.com/bookhaven/bookhaven/internal/server/biz"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func TestRecovery(t *testing.T) {
	engine := gin.New()
	engine.Use(Recovery())
	engine.GET("/boom", func(c *gin.Context) {
		panic("something went sideways")
	})
	engine.GET("/ok", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := perform(engine, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")

	w = perform(engine, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecoveryNilPanic(t *testing.T) {
	engine := gin.New()
	engine.Use(Recovery())
	engine.GET("/boom", func(c *gin.Context) {
		panic(nil) //nolint:govet
	})

	w := perform(engine, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExtractBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := ExtractBearerToken(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = ExtractBearerToken(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Bearer ")
	_, err = ExtractBearerToken(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Bearer abc123")
	token, err := ExtractBearerToken(req)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func newAuthStack(t *testing.T) (*biz.AuthService, *storage.MemStore) {
	t.Helper()

	raw := storage.NewMemStore()

	auth, err := biz.NewAuthService(biz.AuthServiceParams{
		Store:  policy.NewGuard(raw),
		Index:  tenant.New(raw, nil),
		Config: biz.AuthConfig{SecretKey: "test-secret", TokenTTL: time.Hour},
	})
	require.NoError(t, err)

	return auth, raw
}

func TestWithJWTAuth(t *testing.T) {
	auth, _ := newAuthStack(t)

	user, err := auth.SignUp(context.Background(), "ada@example.org", "password123", "Ada", "Lovelace")
	require.NoError(t, err)

	token, err := auth.GenerateJWTToken(context.Background(), user)
	require.NoError(t, err)

	var seenUserID int

	engine := gin.New()
	engine.Use(WithJWTAuth(auth))
	engine.GET("/me", func(c *gin.Context) {
		u, ok := contexts.GetUser(c.Request.Context())
		require.True(t, ok)
		seenUserID = u.ID
		c.Status(http.StatusOK)
	})

	// No credentials.
	w := perform(engine, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = perform(engine, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")

	// Valid token reaches the handler with the user attached.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = perform(engine, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID, seenUserID)
}

func TestWithLibraryID(t *testing.T) {
	var (
		gotID    int
		hadScope bool
	)

	engine := gin.New()
	engine.Use(WithLibraryID())
	engine.GET("/", func(c *gin.Context) {
		gotID, hadScope = contexts.GetLibraryID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	// Header absent: the request proceeds unscoped.
	w := perform(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, hadScope)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(LibraryHeader, "3")
	w = perform(engine, req)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, hadScope)
	assert.Equal(t, 3, gotID)

	for _, bad := range []string{"0", "-4", "three"} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(LibraryHeader, bad)
		w = perform(engine, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "header %q", bad)
	}
}

func TestWithTracing(t *testing.T) {
	var seen string

	engine := gin.New()
	engine.Use(WithTracing())
	engine.GET("/", func(c *gin.Context) {
		seen, _ = contexts.GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	// Client-assigned id wins and is echoed back.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "trace-123")
	w := perform(engine, req)
	assert.Equal(t, "trace-123", seen)
	assert.Equal(t, "trace-123", w.Header().Get(TraceHeader))

	// Otherwise one is generated.
	w = perform(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(TraceHeader))
}
