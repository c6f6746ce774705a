package config

import "time"

// Default returns a Config with sensible defaults: a 800x600 canvas
// reachable only over TCP, no sinks enabled.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:          800,
			Height:         600,
			FileSampleRate: 1.0,
		},
		TCP: TCPConfig{
			Enabled:     true,
			BindAddr:    "0.0.0.0:1337",
			MaxLineSize: 128,
		},
		UDP: UDPConfig{
			Enabled:  false,
			BindAddr: "0.0.0.0:1337",
			Workers:  16,
		},
		WebSocket: WebSocketConfig{
			Enabled:     false,
			BindAddr:    "0.0.0.0:1338",
			Path:        "/ws",
			MaxLineSize: 128,
		},
		Admin: AdminConfig{
			Enabled:  false,
			BindAddr: "127.0.0.1:9090",
			Path:     "/metrics",
		},
		Snapshot: SnapshotConfig{
			Interval: Duration(30 * time.Second),
		},
		Stream: StreamConfig{
			Framerate: 30,
			Encoder:   "ffmpeg",
			LogLevel:  "warning",
		},
		Framebuf: FramebufConfig{
			Framerate: 30,
		},
		Logging: LogConfig{
			Level:  "debug",
			Format: "json",
			Output: "stdout",
		},
	}
}
