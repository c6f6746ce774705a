// Package protocol implements the pixelflut wire grammar: parsing
// request lines into a tagged Request, and formatting a Response back
// to bytes. The grammar is line-oriented and carried, unchanged, over
// TCP, UDP and WebSocket — only the framing around it differs (see
// internal/framing).
package protocol

import "github.com/rnxpyke/pixelflut-go/internal/pixmap"

// RequestKind tags which variant a Request holds, standing in for a
// Rust-style enum the way the teacher's Frame.Type does for its own
// wire protocol.
type RequestKind uint8

const (
	RequestGetSize RequestKind = iota
	RequestGetPixel
	RequestSetPixel
	RequestGetState
	RequestHelp
)

// Request is a tagged union over the five pixelflut verbs. Only the
// fields relevant to Kind are populated.
type Request struct {
	Kind RequestKind

	X, Y  int          // GetPixel, SetPixel
	Color pixmap.Color // SetPixel
	Enc   string        // GetState
	Topic string        // Help; empty means the general topic
}

// ResponseKind tags which variant a Response holds.
type ResponseKind uint8

const (
	ResponseSize ResponseKind = iota
	ResponsePixel
	ResponseState
	ResponseHelp
)

// Response is a tagged union over the pixelflut replies. A successful
// SetPixel produces no Response at all (see Dispatch in internal/conn).
type Response struct {
	Kind ResponseKind

	Width, Height int          // Size
	X, Y          int          // Pixel
	Color         pixmap.Color // Pixel
	Enc           string        // State
	Bytes         []byte        // State, raw payload before base64 framing
	Text          string        // Help
}
