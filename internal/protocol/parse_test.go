package protocol

import (
	"fmt"
	"testing"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Request
	}{
		{"size", "SIZE", Request{Kind: RequestGetSize}},
		{"size lowercase", "size", Request{Kind: RequestGetSize}},
		{"get pixel", "PX 1 2", Request{Kind: RequestGetPixel, X: 1, Y: 2}},
		{"set pixel", "PX 1 2 FF8800", Request{Kind: RequestSetPixel, X: 1, Y: 2, Color: pixmap.Color{R: 0xFF, G: 0x88, B: 0x00}}},
		{"set pixel lowercase hex", "PX 1 2 ff8800", Request{Kind: RequestSetPixel, X: 1, Y: 2, Color: pixmap.Color{R: 0xFF, G: 0x88, B: 0x00}}},
		{"set pixel with alpha", "PX 0 0 11223344", Request{Kind: RequestSetPixel, X: 0, Y: 0, Color: pixmap.Color{R: 0x11, G: 0x22, B: 0x33}}},
		{"state", "STATE rgb64", Request{Kind: RequestGetState, Enc: "rgb64"}},
		{"state uppercase", "STATE RGB64", Request{Kind: RequestGetState, Enc: "rgb64"}},
		{"help general", "HELP", Request{Kind: RequestHelp}},
		{"help topic", "HELP px", Request{Kind: RequestHelp, Topic: "px"}},
		{"help topic case insensitive", "HELP PX", Request{Kind: RequestHelp, Topic: "px"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown keyword", "FOO"},
		{"px wrong arity", "PX 1"},
		{"px too many args", "PX 1 2 FFFFFF extra"},
		{"px non digit", "PX a 2"},
		{"px bad hex length", "PX 1 2 FFF"},
		{"px non hex char", "PX 1 2 GGGGGG"},
		{"size with args", "SIZE 1"},
		{"state unknown encoding", "STATE yuv420"},
		{"state wrong arity", "STATE"},
		{"help unknown topic", "HELP nonsense"},
		{"help too many args", "HELP px extra"},
		{"leading whitespace", " SIZE"},
		{"trailing whitespace", "SIZE "},
		{"double space", "PX 1  2"},
		{"tab separator", "PX 1\t2"},
		{"empty line", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.line); err == nil {
				t.Errorf("Parse(%q) expected error, got none", tt.line)
			}
		})
	}
}

func TestParseRequestResponseRoundTrip(t *testing.T) {
	requests := []Request{
		{Kind: RequestGetSize},
		{Kind: RequestGetPixel, X: 3, Y: 7},
		{Kind: RequestSetPixel, X: 3, Y: 7, Color: pixmap.Color{R: 1, G: 2, B: 3}},
		{Kind: RequestGetState, Enc: "rgb64"},
		{Kind: RequestHelp},
		{Kind: RequestHelp, Topic: "size"},
	}

	for _, req := range requests {
		line := formatRequest(req)
		got, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(Format(%+v)) returned error: %v", req, err)
		}
		if got != req {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, req)
		}
	}
}

// formatRequest renders a Request back to a line, for round-trip
// testing only — production code never needs to format a request
// (only clients issue requests, and the test client writes its own
// literal strings).
func formatRequest(r Request) string {
	switch r.Kind {
	case RequestGetSize:
		return "SIZE"
	case RequestGetPixel:
		return sprintfPX(r.X, r.Y, nil)
	case RequestSetPixel:
		return sprintfPX(r.X, r.Y, &r.Color)
	case RequestGetState:
		return "STATE " + r.Enc
	case RequestHelp:
		if r.Topic == "" {
			return "HELP"
		}
		return "HELP " + r.Topic
	default:
		return ""
	}
}

func sprintfPX(x, y int, c *pixmap.Color) string {
	if c == nil {
		return fmt.Sprintf("PX %d %d", x, y)
	}
	return fmt.Sprintf("PX %d %d %s", x, y, c.String())
}
