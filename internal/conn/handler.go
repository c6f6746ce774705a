package conn

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rnxpyke/pixelflut-go/internal/framing"
	"github.com/rnxpyke/pixelflut-go/internal/protocol"
)

// Handler drives the request/response loop for one stream connection
// (TCP or a WebSocket text session adapted to io.Reader/io.Writer).
// Requests are processed strictly in arrival order and responses are
// written in the same order (spec.md §5); nothing here suspends on
// the canvas itself, only on the underlying stream.
type Handler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	maxLine    int
}

// NewHandler creates a Handler bound to dispatcher, capping lines at
// maxLine bytes.
func NewHandler(dispatcher *Dispatcher, logger *slog.Logger, maxLine int) *Handler {
	return &Handler{dispatcher: dispatcher, logger: logger, maxLine: maxLine}
}

// Serve runs the connection loop until EOF, an I/O error, or a frame
// that exceeds maxLine. It never panics on malformed client input:
// parse errors and out-of-bounds coordinates produce a single
// diagnostic line and the loop continues.
func (h *Handler) Serve(stream io.ReadWriter, remoteAddr string) {
	reader := framing.NewLineReader(stream, h.maxLine)
	writer := framing.NewLineWriter(stream)

	for {
		line, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				return
			}
			if _, ok := err.(framing.ErrFrameTooLong); ok {
				h.logger.Warn("frame too long, closing connection", "remote_addr", remoteAddr)
				return
			}
			h.logger.Warn("connection read error", "remote_addr", remoteAddr, "error", err)
			return
		}

		if err := h.handleLine(line, writer); err != nil {
			h.logger.Warn("connection write error", "remote_addr", remoteAddr, "error", err)
			return
		}

		if err := writer.Flush(); err != nil {
			h.logger.Warn("connection flush error", "remote_addr", remoteAddr, "error", err)
			return
		}
	}
}

// handleLine parses and dispatches one request line, writing either
// the Response or a diagnostic to writer. It only returns an error
// when the write itself failed.
func (h *Handler) handleLine(line string, writer *framing.LineWriter) error {
	req, err := protocol.Parse(line)
	if err != nil {
		return writer.Write(diagnostic(err))
	}

	resp, err := h.dispatcher.Dispatch(req)
	if err != nil {
		return writer.Write(diagnostic(err))
	}
	if resp == nil {
		// Successful SetPixel: no response byte.
		return nil
	}
	return writer.Write(protocol.Format(*resp))
}

// diagnostic renders a single-line, lowercase-leading error that can
// never be mistaken for a valid Response (spec.md §4.4, §7).
func diagnostic(err error) []byte {
	return []byte(fmt.Sprintf("error: %s\n", err.Error()))
}
