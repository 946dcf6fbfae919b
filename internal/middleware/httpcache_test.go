package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCachePassesThroughWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(HTTPCache(nil, HTTPCacheOptions{}))
	r.GET("/api/thing", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/thing", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(CacheVerdictHeader))
}

func TestShouldSkipCachePath(t *testing.T) {
	patterns := []string{"/api/health", "/temp_images/*"}

	assert.True(t, shouldSkipCachePath("/api/health", patterns))
	assert.True(t, shouldSkipCachePath("/temp_images/abc.jpg", patterns))
	assert.False(t, shouldSkipCachePath("/api/image-analysis", patterns))
	assert.False(t, shouldSkipCachePath("/api/healthz", patterns))
}

func TestHasBypassTimestamp(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		url  string
		want bool
	}{
		{"/api/image-analysis?ts=123", true},
		{"/api/image-analysis?timestamp=123", true},
		{"/api/image-analysis?_t=1", true},
		{"/api/image-analysis?t=1", true},
		{"/api/image-analysis?limit=5", false},
		{"/api/image-analysis", false},
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, tc.url, nil)
		assert.Equal(t, tc.want, hasBypassTimestamp(c), tc.url)
	}
}

func TestIsCacheableResponse(t *testing.T) {
	plain := http.Header{}
	assert.True(t, isCacheableResponse(http.StatusOK, plain))
	assert.False(t, isCacheableResponse(http.StatusNotFound, plain))

	noStore := http.Header{}
	noStore.Set("Cache-Control", "no-store")
	assert.False(t, isCacheableResponse(http.StatusOK, noStore))

	private := http.Header{}
	private.Set("Cache-Control", "private, max-age=0")
	assert.False(t, isCacheableResponse(http.StatusOK, private))
}

func TestCacheBodyWriterCapsCapture(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	_, engine := gin.CreateTestContext(rec)
	engine.GET("/big", func(c *gin.Context) {
		w := &cacheBodyWriter{ResponseWriter: c.Writer, maxBodyBytes: 4}
		_, err := w.Write([]byte("123456"))
		require.NoError(t, err)
		assert.True(t, w.overflow)
		assert.Equal(t, []byte("1234"), w.body)
		c.Status(http.StatusOK)
	})

	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/big", nil))
	assert.Equal(t, "123456", rec.Body.String())
}
