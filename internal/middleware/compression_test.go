package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressionRouter() *gin.Engine {
	router := gin.New()
	router.Use(Compression())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("plate ", 200))
	})
	router.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("metric ", 200))
	})
	return router
}

func TestCompressionGzipsWhenAccepted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	compressionRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	reader, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	defer reader.Close()

	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("plate ", 200), string(body))
}

func TestCompressionSkipsExcludedPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	compressionRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, strings.Repeat("metric ", 200), w.Body.String())
}

func TestCompressionSkippedWithoutHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	compressionRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, strings.Repeat("plate ", 200), w.Body.String())
}