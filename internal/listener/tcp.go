// Package listener accepts connections on the three transports the
// server supports (TCP, UDP, WebSocket) and feeds them into
// internal/conn's request/response loop. Each listener runs its own
// accept loop in a goroutine and is stopped by canceling its context;
// internal/daemon supervises the resulting handles.
package listener

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/rnxpyke/pixelflut-go/internal/conn"
)

// TCP accepts line-oriented connections and hands each one to its own
// conn.Handler goroutine.
type TCP struct {
	BindAddr    string
	MaxLineSize int
	Dispatcher  *conn.Dispatcher
	Logger      *slog.Logger
}

// Run binds the listener and accepts connections until ctx is
// canceled or a fatal bind error occurs. Transient Accept errors (for
// example a transient file-descriptor exhaustion) are logged and
// retried; they never bring the listener down.
func (t *TCP) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", t.BindAddr)
	if err != nil {
		return err
	}
	t.Logger.Info("tcp listener started", "bind_addr", t.BindAddr)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	handler := conn.NewHandler(t.Dispatcher, t.Logger, t.MaxLineSize)

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			t.Logger.Warn("tcp accept error, retrying", "error", err)
			continue
		}

		go func() {
			defer c.Close()
			handler.Serve(c, c.RemoteAddr().String())
		}()
	}
}
