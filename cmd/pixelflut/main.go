package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rnxpyke/pixelflut-go/internal/admin"
	"github.com/rnxpyke/pixelflut-go/internal/config"
	"github.com/rnxpyke/pixelflut-go/internal/conn"
	"github.com/rnxpyke/pixelflut-go/internal/daemon"
	"github.com/rnxpyke/pixelflut-go/internal/listener"
	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
	"github.com/rnxpyke/pixelflut-go/internal/protocol"
	"github.com/rnxpyke/pixelflut-go/internal/sink"
)

var version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "server":
		os.Exit(runServer(os.Args[2:]))
	case "put-image":
		os.Exit(runPutImage(os.Args[2:]))
	case "version":
		fmt.Printf("pixelflut v%s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// runServer's flags are seeded from a YAML config file when -config
// names one (internal/config), and every flag can still override a
// field loaded from it; an unspecified -config just means config.Default().
func runServer(args []string) int {
	cfg := config.Default()
	if configPath := scanConfigFlag(args); configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config %s: %v\n", configPath, err)
			return 1
		}
		cfg = loaded
	}

	fs := flag.NewFlagSet("server", flag.ExitOnError)
	fs.String("config", "", "path to a YAML config file")
	width := fs.Int("width", cfg.Canvas.Width, "canvas width")
	height := fs.Int("height", cfg.Canvas.Height, "canvas height")
	tcpAddr := fs.String("tcp", enabledAddr(cfg.TCP.Enabled, cfg.TCP.BindAddr), "TCP bind address, empty to disable")
	udpAddr := fs.String("udp", enabledAddr(cfg.UDP.Enabled, cfg.UDP.BindAddr), "UDP bind address, empty to disable")
	udpWorkers := fs.Int("udp-workers", cfg.UDP.Workers, "number of UDP reuseport workers")
	wsAddr := fs.String("ws", enabledAddr(cfg.WebSocket.Enabled, cfg.WebSocket.BindAddr), "WebSocket bind address, empty to disable")
	wsPath := fs.String("ws-path", cfg.WebSocket.Path, "WebSocket upgrade path")
	adminAddr := fs.String("admin", enabledAddr(cfg.Admin.Enabled, cfg.Admin.BindAddr), "admin health/metrics bind address, empty to disable")
	maxLine := fs.Int("max-line-size", cfg.TCP.MaxLineSize, "maximum request line length in bytes")
	canvasFile := fs.String("canvas-file", cfg.Canvas.FilePath, "mmap the canvas onto this file for persistence, replicated from the in-memory canvas")
	canvasFileSample := fs.Float64("canvas-file-sample-rate", cfg.Canvas.FileSampleRate, "fraction of writes replicated to -canvas-file, 1.0 for every write")
	snapshotLoad := fs.String("snapshot-load", cfg.Snapshot.LoadPath, "initial snapshot file to load")
	snapshotSave := fs.String("snapshot-save", cfg.Snapshot.SavePath, "snapshot file to periodically save")
	snapshotInterval := fs.Duration("snapshot-interval", cfg.Snapshot.Interval.Duration(), "snapshot save interval")
	rtspAddr := fs.String("rtsp", cfg.Stream.RTSPAddr, "RTSP destination for the video stream sink")
	rtmpAddr := fs.String("rtmp", cfg.Stream.RTMPAddr, "RTMP destination for the video stream sink")
	streamEncoder := fs.String("stream-encoder", cfg.Stream.Encoder, "video encoder binary")
	streamFramerate := fs.Int("stream-framerate", cfg.Stream.Framerate, "video stream framerate")
	fbDevice := fs.String("framebuffer", cfg.Framebuf.Device, "Linux framebuffer device path")
	fbFramerate := fs.Int("framebuffer-framerate", cfg.Framebuf.Framerate, "framebuffer write framerate")
	logLevel := fs.String("log-level", envOr("PIXELFLUT_LOG_LEVEL", cfg.Logging.Level), "log verbosity: debug, info, warn, error")
	fs.Parse(args)

	logger, closer := setupLogger(*logLevel, cfg.Logging.Format, cfg.Logging.Output)
	if closer != nil {
		defer closer.Close()
	}
	logger.Info("pixelflut starting", "version", version)

	if *tcpAddr == "" && *udpAddr == "" && *wsAddr == "" {
		logger.Error("at least one of -tcp, -udp, -ws must be set")
		return 1
	}

	memCanvas, err := pixmap.New(*width, *height)
	if err != nil {
		logger.Error("invalid canvas size", "error", err)
		return 1
	}

	var canvas pixmap.Canvas = memCanvas
	var fileCanvas *pixmap.FileBackedPixmap
	if *canvasFile != "" {
		fileCanvas, err = pixmap.OpenFileBacked(*canvasFile, *width, *height)
		if err != nil {
			logger.Error("invalid canvas file", "error", err)
			return 1
		}
		defer fileCanvas.Close()
		memCanvas.PutRaw(fileCanvas.GetRaw())
		canvas = pixmap.NewReplicating(memCanvas, *canvasFileSample, fileCanvas)
		logger.Info("canvas backed by file", "path", *canvasFile, "sample_rate", *canvasFileSample)
	}

	dispatcher := conn.NewDispatcher(canvas)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sup := daemon.NewSupervisor(ctx, logger)

	if *tcpAddr != "" {
		l := &listener.TCP{BindAddr: *tcpAddr, MaxLineSize: *maxLine, Dispatcher: dispatcher, Logger: logger}
		sup.StartListener("tcp", l.Run)
	}
	if *udpAddr != "" {
		l := &listener.UDP{BindAddr: *udpAddr, Workers: *udpWorkers, Dispatcher: dispatcher, Logger: logger}
		sup.StartListener("udp", l.Run)
	}
	if *wsAddr != "" {
		l := &listener.WebSocket{BindAddr: *wsAddr, Path: *wsPath, MaxLineSize: *maxLine, Dispatcher: dispatcher, Logger: logger}
		sup.StartListener("websocket", l.Run)
	}
	if *adminAddr != "" {
		a := &admin.Server{BindAddr: *adminAddr, Path: cfg.Admin.Path, Canvas: canvas, Logger: logger}
		sup.Start("admin", a.Run)
	}

	if *snapshotLoad != "" || *snapshotSave != "" {
		snap := &sink.Snapshot{
			Canvas:   canvas,
			LoadPath: *snapshotLoad,
			SavePath: *snapshotSave,
			Interval: *snapshotInterval,
			Logger:   logger,
		}
		if err := snap.LoadInitial(); err != nil {
			logger.Error("failed to load initial snapshot", "error", err)
			return 1
		}
		if *snapshotSave != "" {
			sup.Start("snapshot", snap.Run)
		}
	}
	if *rtspAddr != "" || *rtmpAddr != "" {
		str := &sink.Stream{
			Canvas:    canvas,
			Encoder:   *streamEncoder,
			RTSPAddr:  *rtspAddr,
			RTMPAddr:  *rtmpAddr,
			Framerate: *streamFramerate,
			LogLevel:  cfg.Stream.LogLevel,
			Logger:    logger,
		}
		sup.Start("stream", str.Run)
	}
	if *fbDevice != "" {
		fb := &sink.Framebuffer{Canvas: canvas, Device: *fbDevice, Framerate: *fbFramerate, Logger: logger}
		sup.Start("framebuffer", fb.Run)
	}

	logger.Info("pixelflut ready", "width", *width, "height", *height)

	<-sup.Done()
	listenersExhausted := sup.ListenersExhausted()
	if listenersExhausted {
		logger.Error("no listeners remain alive, shutting down")
	} else {
		logger.Info("shutdown signal received")
	}

	shutdownErr := sup.Shutdown()
	if shutdownErr != nil {
		logger.Error("shutdown completed with errors", "error", shutdownErr)
	}

	if listenersExhausted || shutdownErr != nil {
		return 2
	}

	logger.Info("pixelflut stopped")
	return 0
}

func runPutImage(args []string) int {
	fs := flag.NewFlagSet("put-image", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:1337", "server address to connect to")
	fs.Parse(args)

	logger, _ := setupLogger("info", "text", "stdout")

	c, err := net.Dial("tcp", *addr)
	if err != nil {
		logger.Error("connect failed", "addr", *addr, "error", err)
		return 1
	}
	defer c.Close()

	if _, err := c.Write([]byte("SIZE\n")); err != nil {
		logger.Error("write failed", "error", err)
		return 1
	}

	buf := make([]byte, 64)
	n, err := c.Read(buf)
	if err != nil {
		logger.Error("read failed", "error", err)
		return 1
	}
	resp, err := protocol.ParseResponse(string(buf[:n-1]))
	if err != nil || resp.Kind != protocol.ResponseSize {
		logger.Error("unexpected SIZE response", "error", err)
		return 1
	}

	logger.Info("painting canvas", "width", resp.Width, "height", resp.Height)
	for {
		color := pixmap.Color{R: uint8(rand.IntN(256)), G: uint8(rand.IntN(256)), B: uint8(rand.IntN(256))}
		for y := 0; y < resp.Height; y++ {
			for x := 0; x < resp.Width; x++ {
				line := fmt.Sprintf("PX %d %d %s\n", x, y, color.String())
				if _, err := c.Write([]byte(line)); err != nil {
					logger.Error("write failed", "error", err)
					return 1
				}
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// enabledAddr collapses a config section's Enabled/BindAddr pair into
// the empty-string-means-disabled convention the flags use.
func enabledAddr(enabled bool, bindAddr string) string {
	if !enabled {
		return ""
	}
	return bindAddr
}

// scanConfigFlag looks for -config/--config ahead of the real flag.Parse
// call, so its value can seed the rest of the flags' defaults before
// they're declared.
func scanConfigFlag(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config=")
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func setupLogger(level, format, output string) (*slog.Logger, io.Closer) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	writer, closer := resolveLogOutput(output)
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	return slog.New(handler), closer
}

func resolveLogOutput(output string) (io.Writer, io.Closer) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return os.Stdout, nil
		}
		return f, f
	}
}

func printUsage() {
	fmt.Println(`pixelflut - collaborative pixel canvas server

Usage:
  pixelflut <command> [options]

Commands:
  server [flags]      Start the server
  put-image [flags]   Connect and repeatedly paint the canvas a random color
  version             Show version
  help                Show this help

Signals:
  SIGINT/SIGTERM       Graceful shutdown

Examples:
  pixelflut server -tcp 0.0.0.0:1337
  pixelflut server -tcp 0.0.0.0:1337 -udp 0.0.0.0:1337 -ws 0.0.0.0:1338
  pixelflut put-image -addr 127.0.0.1:1337`)
}
