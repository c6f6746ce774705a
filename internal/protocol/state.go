package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

// stateEnvelope is the msgpack-encoded body of a rgb64 STATE response,
// mirroring the way the teacher's wire Frame carries a small
// msgpack-encoded header ahead of a raw payload (internal/protocol
// Frame.Headers in the teacher repo). Here the whole body is the
// envelope: there is no separate raw payload section to keep framing
// simple over all three transports.
type stateEnvelope struct {
	Width  int      `msgpack:"width"`
	Height int      `msgpack:"height"`
	Pixels []uint32 `msgpack:"pixels"` // packed 0x00RRGGBB words, row-major
}

// EncodeState serializes a snapshot of canvas cells into the byte
// payload for the given encoding. rgb64 is the only encoding defined
// today; Parse already rejects any other name before this is reached.
func EncodeState(enc string, width, height int, cells []pixmap.Color) ([]byte, error) {
	switch enc {
	case "rgb64":
		words := make([]uint32, len(cells))
		for i, c := range cells {
			words[i] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		}
		return msgpack.Marshal(stateEnvelope{Width: width, Height: height, Pixels: words})
	default:
		return nil, fmt.Errorf("unknown state encoding %q", enc)
	}
}

// DecodeState is the inverse of EncodeState, used by clients and tests.
func DecodeState(enc string, body []byte) (width, height int, cells []pixmap.Color, err error) {
	switch enc {
	case "rgb64":
		var env stateEnvelope
		if err := msgpack.Unmarshal(body, &env); err != nil {
			return 0, 0, nil, fmt.Errorf("decoding rgb64 state body: %w", err)
		}
		cells = make([]pixmap.Color, len(env.Pixels))
		for i, w := range env.Pixels {
			cells[i] = pixmap.Color{R: uint8(w >> 16), G: uint8(w >> 8), B: uint8(w)}
		}
		return env.Width, env.Height, cells, nil
	default:
		return 0, 0, nil, fmt.Errorf("unknown state encoding %q", enc)
	}
}
