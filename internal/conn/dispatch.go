// Package conn implements the per-client connection state machine:
// read a request, apply it to the shared canvas, optionally write a
// response, repeat. The same Dispatch logic is shared by the TCP,
// WebSocket and UDP listeners; only the framing and I/O around it
// differs (internal/framing, internal/listener).
package conn

import (
	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
	"github.com/rnxpyke/pixelflut-go/internal/protocol"
)

// Dispatcher applies parsed requests to a shared canvas.
type Dispatcher struct {
	canvas pixmap.Canvas
}

// NewDispatcher creates a Dispatcher over the given canvas.
func NewDispatcher(canvas pixmap.Canvas) *Dispatcher {
	return &Dispatcher{canvas: canvas}
}

// Dispatch applies req to the canvas. It returns a nil Response (and
// nil error) for a successful SetPixel, which produces no wire bytes
// at all. A non-nil error means the caller should emit a diagnostic
// line instead of a Response.
func (d *Dispatcher) Dispatch(req protocol.Request) (*protocol.Response, error) {
	switch req.Kind {
	case protocol.RequestGetSize:
		w, h := d.canvas.Size()
		return &protocol.Response{Kind: protocol.ResponseSize, Width: w, Height: h}, nil

	case protocol.RequestGetPixel:
		c, err := d.canvas.Get(req.X, req.Y)
		if err != nil {
			return nil, err
		}
		return &protocol.Response{Kind: protocol.ResponsePixel, X: req.X, Y: req.Y, Color: c}, nil

	case protocol.RequestSetPixel:
		if err := d.canvas.Set(req.X, req.Y, req.Color); err != nil {
			return nil, err
		}
		return nil, nil

	case protocol.RequestGetState:
		w, h := d.canvas.Size()
		raw := d.canvas.GetRaw()
		body, err := protocol.EncodeState(req.Enc, w, h, raw)
		if err != nil {
			return nil, err
		}
		return &protocol.Response{Kind: protocol.ResponseState, Enc: req.Enc, Bytes: body}, nil

	case protocol.RequestHelp:
		return &protocol.Response{Kind: protocol.ResponseHelp, Text: HelpText(req.Topic)}, nil

	default:
		return nil, errUnknownRequestKind{kind: req.Kind}
	}
}

type errUnknownRequestKind struct {
	kind protocol.RequestKind
}

func (e errUnknownRequestKind) Error() string {
	return "unknown request kind"
}
