package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mr1hm/go-climate-risk/internal/ingestion"
)

func limitedRouter(rps int, exempt ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(rps, exempt...))
	NewHandler(&mockSource{err: ingestion.ErrNoDataset}, nil).RegisterRoutes(router)
	return router
}

func TestRateLimit_RejectsBurst(t *testing.T) {
	router := limitedRouter(1)

	first := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, first.Code)

	second := get(t, router, "/health")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, second.Body.String())
}

func TestRateLimit_ExemptPaths(t *testing.T) {
	router := limitedRouter(1, "/health")

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	// the bucket is untouched by exempt traffic
	w := get(t, router, "/api/dataset")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
