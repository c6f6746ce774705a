package sink

import (
	"strings"
	"testing"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

func TestStreamEncoderArgsIncludesBothDestinations(t *testing.T) {
	canvas, err := pixmap.New(4, 2)
	if err != nil {
		t.Fatalf("pixmap.New: %v", err)
	}
	s := &Stream{
		Canvas:    canvas,
		RTSPAddr:  "rtsp://localhost/stream",
		RTMPAddr:  "rtmp://localhost/live",
		Framerate: 30,
		LogLevel:  "warning",
	}

	args := s.encoderArgs(4, 2)
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "4x2") {
		t.Fatalf("missing frame size: %q", joined)
	}
	if !strings.Contains(joined, "rtsp://localhost/stream") {
		t.Fatalf("missing rtsp destination: %q", joined)
	}
	if !strings.Contains(joined, "rtmp://localhost/live") {
		t.Fatalf("missing rtmp destination: %q", joined)
	}
}

func TestStreamRGB24FrameLength(t *testing.T) {
	canvas, err := pixmap.New(3, 3)
	if err != nil {
		t.Fatalf("pixmap.New: %v", err)
	}
	s := &Stream{Canvas: canvas}

	frame := s.rgb24Frame()
	if len(frame) != 3*3*3 {
		t.Fatalf("got %d bytes, want %d", len(frame), 3*3*3)
	}
}
