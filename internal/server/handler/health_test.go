package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler("server")

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest("GET", "/api/health", nil))

	require.Equal(t, 200, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "defolio", body["service"])
	assert.Equal(t, "server", body["mode"])
	assert.GreaterOrEqual(t, body["uptimeSeconds"].(float64), 0.0)
	assert.NotEmpty(t, body["timestamp"])
}
