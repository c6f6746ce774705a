// Package admin serves the read-only operational surface: a liveness
// check and a small plaintext metrics page, both over HTTP/2
// cleartext so a local Prometheus scraper or health probe gets
// multiplexed requests without needing TLS.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

// Server exposes health and metrics endpoints for one canvas.
type Server struct {
	BindAddr string
	Path     string
	Canvas   pixmap.Canvas
	Logger   *slog.Logger

	started time.Time
}

// Run starts the admin HTTP server and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.started = time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc(s.Path, s.handleMetrics)

	srv := &http.Server{
		Addr:    s.BindAddr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}
	s.Logger.Info("admin listener started", "bind_addr", s.BindAddr, "path", s.Path)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	width, height := s.Canvas.Size()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "pixelflut_canvas_width %d\n", width)
	fmt.Fprintf(w, "pixelflut_canvas_height %d\n", height)
	fmt.Fprintf(w, "pixelflut_uptime_seconds %d\n", int(time.Since(s.started).Seconds()))
}
