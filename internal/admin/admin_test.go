package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	canvas, err := pixmap.New(10, 20)
	if err != nil {
		t.Fatalf("pixmap.New: %v", err)
	}
	return &Server{
		Path:   "/metrics",
		Canvas: canvas,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "ok" {
		t.Fatalf("got body %q", rec.Body.String())
	}
}

func TestHandleMetricsReportsCanvasSize(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	s.handleMetrics(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "pixelflut_canvas_width 10") {
		t.Fatalf("missing width metric: %q", body)
	}
	if !strings.Contains(body, "pixelflut_canvas_height 20") {
		t.Fatalf("missing height metric: %q", body)
	}
}
