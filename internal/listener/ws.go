package listener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rnxpyke/pixelflut-go/internal/conn"
)

// WebSocket serves the pixelflut grammar over text-framed WebSocket
// messages: each text frame is treated as one request line (spec.md
// §4.3), with a newline appended when the frame lacks one; a frame
// holding several newline-separated lines is served as several
// requests. Binary frames carry no meaning in this protocol and are
// logged and dropped rather than closing the connection.
type WebSocket struct {
	BindAddr    string
	Path        string
	MaxLineSize int
	Dispatcher  *conn.Dispatcher
	Logger      *slog.Logger

	upgrader websocket.Upgrader
}

// Run starts an HTTP server on BindAddr that upgrades Path to
// WebSocket and serves every connection until ctx is canceled.
func (w *WebSocket) Run(ctx context.Context) error {
	w.upgrader = websocket.Upgrader{
		ReadBufferSize:  w.MaxLineSize,
		WriteBufferSize: w.MaxLineSize,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc(w.Path, w.handleUpgrade)

	srv := &http.Server{Addr: w.BindAddr, Handler: mux}
	w.Logger.Info("websocket listener started", "bind_addr", w.BindAddr, "path", w.Path)

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

func (w *WebSocket) handleUpgrade(rw http.ResponseWriter, r *http.Request) {
	wsConn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer wsConn.Close()

	remoteAddr := r.RemoteAddr
	w.Logger.Debug("websocket connected", "remote_addr", remoteAddr)

	adapter := &wsReadWriter{conn: wsConn, logger: w.Logger, remoteAddr: remoteAddr}
	handler := conn.NewHandler(w.Dispatcher, w.Logger, w.MaxLineSize)
	handler.Serve(adapter, remoteAddr)

	w.Logger.Debug("websocket disconnected", "remote_addr", remoteAddr)
}

// wsReadWriter adapts a gorilla/websocket connection's message-framed
// API to the io.Reader/io.Writer pair conn.Handler expects, so the
// same request/response loop serves TCP and WebSocket alike. Each
// Read call blocks for exactly one text message; binary messages are
// skipped rather than surfaced as protocol data.
type wsReadWriter struct {
	conn       *websocket.Conn
	logger     *slog.Logger
	remoteAddr string
	pending    []byte
}

func (a *wsReadWriter) Read(p []byte) (int, error) {
	for len(a.pending) == 0 {
		msgType, data, err := a.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.logger.Warn("websocket read error", "remote_addr", a.remoteAddr, "error", err)
			}
			return 0, io.EOF
		}
		if msgType != websocket.TextMessage {
			a.logger.Warn("dropping non-text websocket frame", "remote_addr", a.remoteAddr, "type", msgType)
			continue
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		a.pending = data
	}
	n := copy(p, a.pending)
	a.pending = a.pending[n:]
	return n, nil
}

func (a *wsReadWriter) Write(p []byte) (int, error) {
	if err := a.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
