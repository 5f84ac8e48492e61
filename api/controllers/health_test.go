package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/watchcrew/watchcrew-backend/pkg/config"
)

type healthyPinger struct{}

func (healthyPinger) Ping(context.Context) error {
	return nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return errors.New("connection refused")
}

func healthTestConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	handler := HealthLive(healthTestConfig())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health/live", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "test", w.Header().Get("X-WatchCrew-Env"))
	require.Contains(t, w.Body.String(), "live")
}

func TestHealthReadyAllDependenciesUp(t *testing.T) {
	handler := HealthReady(healthTestConfig(), nil, map[string]Pinger{
		"database": healthyPinger{},
		"redis":    healthyPinger{},
	})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ready")
}

func TestHealthReadyFailsWhenDependencyDown(t *testing.T) {
	handler := HealthReady(healthTestConfig(), nil, map[string]Pinger{
		"database": healthyPinger{},
		"redis":    failingPinger{},
	})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "DEPENDENCY_ERROR")
}

func TestHealthReadySkipsNilPingers(t *testing.T) {
	handler := HealthReady(healthTestConfig(), nil, map[string]Pinger{"database": nil})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))

	require.Equal(t, http.StatusOK, w.Code)
}
