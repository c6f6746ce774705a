// Package config loads and validates the pixelflut server configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete pixelflut server configuration.
type Config struct {
	Canvas    CanvasConfig    `yaml:"canvas"`
	TCP       TCPConfig       `yaml:"tcp"`
	UDP       UDPConfig       `yaml:"udp"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Admin     AdminConfig     `yaml:"admin"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Stream    StreamConfig    `yaml:"stream"`
	Framebuf  FramebufConfig  `yaml:"framebuffer"`
	Logging   LogConfig       `yaml:"logging"`
}

// CanvasConfig describes the fixed dimensions of the shared pixmap and
// its optional persistence backing.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// FilePath, if set, mmaps a FileBackedPixmap at this path and
	// replicates writes from the in-memory canvas into it at
	// FileSampleRate, so the authoritative canvas stays lock-free
	// while a durable mirror is maintained for restart recovery.
	FilePath       string  `yaml:"file_path"`
	FileSampleRate float64 `yaml:"file_sample_rate"`
}

// TCPConfig configures the line-oriented stream listener.
type TCPConfig struct {
	Enabled     bool `yaml:"enabled"`
	BindAddr    string `yaml:"bind_addr"`
	MaxLineSize int    `yaml:"max_line_size"`
}

// UDPConfig configures the datagram listener and its worker fan-out.
type UDPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BindAddr string `yaml:"bind_addr"`
	Workers  int    `yaml:"workers"`
}

// WebSocketConfig configures the message-framed web transport.
type WebSocketConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddr    string `yaml:"bind_addr"`
	Path        string `yaml:"path"`
	MaxLineSize int    `yaml:"max_line_size"`
}

// AdminConfig configures the read-only health/metrics HTTP surface,
// served over HTTP/2 cleartext (h2c) on its own bind address.
type AdminConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BindAddr string `yaml:"bind_addr"`
	Path     string `yaml:"path"`
}

// SnapshotConfig configures the periodic snapshot-to-disk sink.
type SnapshotConfig struct {
	LoadPath string   `yaml:"load_path"`
	SavePath string   `yaml:"save_path"`
	Interval Duration `yaml:"interval"`
}

// StreamConfig configures the external video-encoder sink.
type StreamConfig struct {
	RTSPAddr  string   `yaml:"rtsp_addr"`
	RTMPAddr  string   `yaml:"rtmp_addr"`
	Framerate int      `yaml:"framerate"`
	Encoder   string   `yaml:"encoder_binary"`
	LogLevel  string   `yaml:"log_level"`
}

// FramebufConfig configures the Linux framebuffer-device sink.
type FramebufConfig struct {
	Device    string `yaml:"device"`
	Framerate int    `yaml:"framerate"`
}

// LogConfig configures the slog handler used by cmd/pixelflut.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a time.Duration that supports YAML string unmarshaling,
// e.g. "5s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads config from a YAML file, applying defaults for missing values.
// A missing file is not an error: Default() alone is returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if verr := cfg.Validate(); verr != nil {
				return nil, fmt.Errorf("invalid config: %w", verr)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for invalid or conflicting values.
func (c *Config) Validate() error {
	if c.Canvas.Width < 1 || c.Canvas.Height < 1 {
		return fmt.Errorf("canvas.width and canvas.height must both be >= 1, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}

	if !c.TCP.Enabled && !c.UDP.Enabled && !c.WebSocket.Enabled {
		return fmt.Errorf("at least one of tcp.enabled, udp.enabled, websocket.enabled must be true")
	}

	if c.UDP.Enabled && c.UDP.Workers < 1 {
		return fmt.Errorf("udp.workers must be >= 1, got %d", c.UDP.Workers)
	}

	if c.Snapshot.SavePath != "" && c.Snapshot.Interval.Duration() <= 0 {
		return fmt.Errorf("snapshot.interval must be > 0 when snapshot.save_path is set")
	}

	if (c.Stream.RTSPAddr != "" || c.Stream.RTMPAddr != "") && c.Stream.Framerate < 1 {
		return fmt.Errorf("stream.framerate must be >= 1 when a stream destination is configured")
	}

	if c.Framebuf.Device != "" && c.Framebuf.Framerate < 1 {
		return fmt.Errorf("framebuffer.framerate must be >= 1 when framebuffer.device is set")
	}

	return nil
}
