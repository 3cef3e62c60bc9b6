// Package middleware provides HTTP middleware components for the plate service.
package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// compressionExcludedPaths are served uncompressed: promhttp negotiates
// its own encoding for /metrics, and the probe endpoints return a few
// bytes each.
var compressionExcludedPaths = []string{"/metrics", "/healthz", "/readyz"}

// Compression returns a middleware that gzips responses for clients that
// accept it. Optimization results for large instances carry hundreds of
// repetitive tag entries, which compress well.
func Compression() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths(compressionExcludedPaths))
}
