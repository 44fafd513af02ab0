package metrics_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chirphq/chirp/internal/health"
	"github.com/chirphq/chirp/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestChecker(p health.Pinger) *health.Checker {
	return health.NewChecker(p, slog.Default(), prometheus.NewRegistry())
}

func TestNewServer_ServesRegisteredMetrics(t *testing.T) {
	metrics.Register()
	metrics.SignupsTotal.Inc()

	srv := metrics.NewServer(":0", newTestChecker(&mockPinger{}))

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "chirp_signups_total") {
		t.Fatal("expected chirp_signups_total in /metrics output")
	}
}

func TestNewServer_LivenessAlwaysUp(t *testing.T) {
	srv := metrics.NewServer(":0", newTestChecker(&mockPinger{err: errors.New("db down")}))

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"up"`) {
		t.Fatalf("expected up status, got %s", rec.Body.String())
	}
}

func TestNewServer_ReadinessReports503WhenPostgresDown(t *testing.T) {
	srv := metrics.NewServer(":0", newTestChecker(&mockPinger{err: errors.New("connection refused")}))

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != 503 {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"down"`) {
		t.Fatalf("expected down status, got %s", rec.Body.String())
	}
}
