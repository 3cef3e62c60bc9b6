package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printops/plate-service/internal/circuitbreaker"
)

func healthRouter(h *HealthHandler) *gin.Engine {
	router := gin.New()
	h.Register(router)
	return router
}

func getHealth(router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestLiveness(t *testing.T) {
	w, body := getHealth(healthRouter(NewHealthHandler()), "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadinessWithoutCheckers(t *testing.T) {
	w, body := getHealth(healthRouter(NewHealthHandler()), "/readyz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadinessHealthyCheckers(t *testing.T) {
	h := NewHealthHandler()
	h.RegisterChecker("mongodb", HealthCheckerFunc(func() error { return nil }))

	w, body := getHealth(healthRouter(h), "/readyz")

	require.Equal(t, http.StatusOK, w.Code)
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["mongodb"])
}

func TestReadinessFailingChecker(t *testing.T) {
	h := NewHealthHandler()
	h.RegisterChecker("mongodb", HealthCheckerFunc(func() error { return errors.New("connection refused") }))

	w, body := getHealth(healthRouter(h), "/readyz")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "connection refused", checks["mongodb"])
}

func TestReadinessOpenCircuitBreaker(t *testing.T) {
	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		Name:             "runs",
	})
	_ = cb.Execute(context.Background(), func() error { return errors.New("down") })
	require.Equal(t, circuitbreaker.StateOpen, cb.State())

	h := NewHealthHandler()
	h.RegisterCircuitBreaker("mongodb_runs", cb)

	w, body := getHealth(healthRouter(h), "/readyz")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "open", checks["mongodb_runs_circuit"])
}