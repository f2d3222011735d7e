package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

type stubParser struct {
	userID uuid.UUID
	role   string
	err    error
}

func (p stubParser) ParseAccess(string) (uuid.UUID, string, error) {
	return p.userID, p.role, p.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	r := gin.New()
	r.GET("/ok", AuthMiddleware(stubParser{userID: userID, role: "creator"}), func(c *gin.Context) {
		got, _ := c.Get(ContextUserIDKey)
		c.String(http.StatusOK, fmt.Sprint(got))
	})
	r.GET("/bad", AuthMiddleware(stubParser{err: errors.New("expired")}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/ok", map[string]string{"Authorization": "Bearer token"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/ok", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/bad", map[string]string{"Authorization": "Bearer token"}).Code)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthMiddleware(stubParser{userID: uuid.New(), role: "sponsor"}), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/sponsor", AuthMiddleware(stubParser{userID: uuid.New(), role: "sponsor"}), RequireRole("sponsor", "admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	auth := map[string]string{"Authorization": "Bearer token"}
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", auth).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/sponsor", auth).Code)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) { _ = c.Error(apperror.ErrNoSpotsLeft) })
	r.GET("/internal", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })

	w := perform(r, http.MethodGet, "/conflict", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "свободных мест")

	w = perform(r, http.MethodGet, "/internal", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestRateLimitMiddleware(t *testing.T) {
	store, err := NewLimiterStore(nil)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/login", RateLimitMiddleware(store, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", nil).Code)
	w := perform(r, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodPost, "/login", nil).Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.mingree.in"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://app.mingree.in"})
	assert.Equal(t, "https://app.mingree.in", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://app.mingree.in"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.GET("/campaigns/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/campaigns/nope", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/campaigns/"+uuid.NewString(), nil).Code)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", nil)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = perform(r, http.MethodGet, "/x", map[string]string{requestIDHeader: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(requestIDHeader))
}
