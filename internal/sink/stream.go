package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

// Stream pipes the canvas into an external encoder process (ffmpeg by
// convention) as a raw RGB24 frame sequence, one frame per tick, so
// the canvas can be republished as an RTSP or RTMP video feed. The
// encoder binary and its destination are entirely its own concern;
// this sink only owns feeding it frames.
type Stream struct {
	Canvas    pixmap.Canvas
	Encoder   string
	RTSPAddr  string
	RTMPAddr  string
	Framerate int
	LogLevel  string
	Logger    *slog.Logger
}

// Run starts the encoder subprocess and feeds it one frame per tick
// until ctx is canceled or the subprocess exits on its own, in which
// case Run returns the subprocess's error. A frame that can't be
// written before the next tick is due is dropped rather than left to
// pile up against a stalled encoder.
func (s *Stream) Run(ctx context.Context) error {
	w, h := s.Canvas.Size()

	args := s.encoderArgs(w, h)
	cmd := exec.CommandContext(ctx, s.Encoder, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("creating encoder stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting encoder %s: %w", s.Encoder, err)
	}
	s.Logger.Info("stream encoder started", "encoder", s.Encoder, "rtsp_addr", s.RTSPAddr, "rtmp_addr", s.RTMPAddr)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	// A single writer goroutine owns stdin so a slow encoder can never
	// cause two frames to interleave on the pipe; frames queued up
	// while it's still writing the previous one are dropped instead of
	// buffered, since a stale frame is worse than a skipped one.
	frames := make(chan []byte)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for frame := range frames {
			if _, err := stdin.Write(frame); err != nil {
				s.Logger.Warn("stream frame write failed", "error", err)
				return
			}
		}
	}()

	interval := time.Second / time.Duration(s.Framerate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			select {
			case frames <- s.rgb24Frame():
			default:
				s.Logger.Warn("stream encoder fell behind, dropping frame")
			}
		case err := <-done:
			close(frames)
			<-writerDone
			return fmt.Errorf("encoder exited: %w", err)
		case <-ctx.Done():
			close(frames)
			<-writerDone
			stdin.Close()
			<-done
			return nil
		}
	}
}

func (s *Stream) rgb24Frame() []byte {
	pixels := s.Canvas.GetRaw()
	frame := make([]byte, 0, len(pixels)*3)
	for _, c := range pixels {
		frame = append(frame, c.R, c.G, c.B)
	}
	return frame
}

func (s *Stream) encoderArgs(w, h int) []string {
	size := fmt.Sprintf("%dx%d", w, h)
	args := []string{
		"-loglevel", s.LogLevel,
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", size,
		"-framerate", fmt.Sprintf("%d", s.Framerate),
		"-i", "-",
	}
	if s.RTSPAddr != "" {
		args = append(args, "-f", "rtsp", s.RTSPAddr)
	}
	if s.RTMPAddr != "" {
		args = append(args, "-f", "flv", s.RTMPAddr)
	}
	return args
}
