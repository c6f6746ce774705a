package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

// Framebuffer periodically writes the canvas to a Linux framebuffer
// device (/dev/fb0 and similar) in its native 32-bit BGRX pixel
// format, the layout the Linux console framebuffer driver expects.
type Framebuffer struct {
	Canvas    pixmap.Canvas
	Device    string
	Framerate int
	Logger    *slog.Logger
}

// Run opens Device once and writes a full frame to it at Framerate
// until ctx is canceled. A write failure is logged and the loop
// continues with the next tick on the same open device file; the
// device is not reopened.
func (f *Framebuffer) Run(ctx context.Context) error {
	dev, err := os.OpenFile(f.Device, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening framebuffer device %s: %w", f.Device, err)
	}
	defer dev.Close()

	interval := time.Second / time.Duration(f.Framerate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := dev.WriteAt(f.bgrxFrame(), 0); err != nil {
				f.Logger.Warn("framebuffer write failed", "device", f.Device, "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// bgrxFrame converts the canvas into the 32-bit-per-pixel BGRX layout
// most Linux framebuffer devices are configured for: blue, green, red,
// then an unused byte, per pixel.
func (f *Framebuffer) bgrxFrame() []byte {
	pixels := f.Canvas.GetRaw()
	frame := make([]byte, len(pixels)*4)
	for i, c := range pixels {
		frame[i*4] = c.B
		frame[i*4+1] = c.G
		frame[i*4+2] = c.R
		frame[i*4+3] = 0
	}
	return frame
}
