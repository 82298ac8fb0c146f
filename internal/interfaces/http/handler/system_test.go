package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return p.err
}

func getHealth(t *testing.T, db Pinger) (int, HealthResponse) {
	t.Helper()
	engine := gin.New()
	engine.GET("/health", NewSystemHandler("ledger", "1.2.3", db).Health)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body struct {
		Success bool           `json:"success"`
		Data    HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, w.Code == http.StatusOK, body.Success)
	return w.Code, body.Data
}

func TestHealth(t *testing.T) {
	code, health := getHealth(t, fakePinger{})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "up", health.Database)
	assert.Equal(t, "ledger", health.Name)
	assert.Equal(t, "1.2.3", health.Version)
	assert.NotEmpty(t, health.GoVersion)
}

func TestHealth_DatabaseDown(t *testing.T) {
	code, health := getHealth(t, fakePinger{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "down", health.Database)
}

func TestHealth_NoDatabase(t *testing.T) {
	code, health := getHealth(t, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "up", health.Database)
}
