package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/clubsync/internal/config"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
	"github.com/riskibarqy/clubsync/internal/platform/resilience"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		HTTPAddr:           ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		CacheEnabled:       true,
		CacheTTL:           time.Second,
		CORSAllowedOrigins: []string{"*"},
		AnubisBaseURL:      "http://127.0.0.1:1",
		AnubisTimeout:      time.Second,
		Spond: config.SpondConfig{
			BaseURL:        "http://127.0.0.1:1",
			Timeout:        time.Second,
			Circuit:        resilience.DefaultCircuitBreakerConfig(),
			CredentialsKey: "app-test-key",
			DaysBehind:     7,
			DaysAhead:      60,
		},
	}
}

func TestNewHTTPServer_InMemory(t *testing.T) {
	app, err := NewHTTPServer(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	rec := httptest.NewRecorder()
	app.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spond/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got=%d", rec.Code)
	}
}

func TestNewHTTPServer_RejectsEmptyAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = " "
	if _, err := NewHTTPServer(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
