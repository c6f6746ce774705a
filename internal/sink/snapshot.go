// Package sink implements the periodic, read-only consumers of a
// canvas: a snapshot file writer, an external video encoder, and a
// Linux framebuffer device writer. Each is a ticker-driven loop in the
// shape of the teacher's file watcher: tick, act, never block the
// ticker on a slow action.
package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

// Snapshot periodically writes the canvas to SavePath using the same
// on-disk layout FileBackedPixmap maps (pixmap.EncodeFile: an 8+8-byte
// little-endian width/height header followed by packed 32-bit cell
// words), so a snapshot file can be reopened directly as a file-backed
// canvas. It reads LoadPath once at startup (if set) to seed the
// canvas before serving any traffic.
type Snapshot struct {
	Canvas   pixmap.Canvas
	LoadPath string
	SavePath string
	Interval time.Duration
	Logger   *slog.Logger
}

// LoadInitial reads LoadPath, if set, into Canvas. A missing file is
// not an error: the canvas simply starts blank.
func (s *Snapshot) LoadInitial() error {
	if s.LoadPath == "" {
		return nil
	}
	data, err := os.ReadFile(s.LoadPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.Logger.Info("snapshot load path does not exist, starting blank", "path", s.LoadPath)
			return nil
		}
		return fmt.Errorf("reading snapshot %s: %w", s.LoadPath, err)
	}

	wantW, wantH := s.Canvas.Size()
	storedW, storedH, pixels, err := pixmap.DecodeFile(data)
	if err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", s.LoadPath, err)
	}
	if storedW != wantW || storedH != wantH {
		return fmt.Errorf("snapshot %s has size %dx%d, want %dx%d", s.LoadPath, storedW, storedH, wantW, wantH)
	}

	s.Canvas.PutRaw(pixels)
	s.Logger.Info("loaded initial snapshot", "path", s.LoadPath)
	return nil
}

// Run ticks every Interval, writing the canvas to SavePath. Failures
// are logged and the loop continues; a single bad write never stops
// future snapshots. The file is written to a temp path in the same
// directory and renamed into place so a reader never observes a
// partially written snapshot.
func (s *Snapshot) Run(ctx context.Context) error {
	if s.SavePath == "" {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.writeOnce(); err != nil {
				s.Logger.Warn("snapshot write failed", "path", s.SavePath, "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Snapshot) writeOnce() error {
	w, h := s.Canvas.Size()
	buf := pixmap.EncodeFile(w, h, s.Canvas.GetRaw())

	dir := filepath.Dir(s.SavePath)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.SavePath); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
