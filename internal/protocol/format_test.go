package protocol

import (
	"reflect"
	"testing"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

func TestFormatResponse(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"size", Response{Kind: ResponseSize, Width: 4, Height: 4}, "SIZE 4 4\n"},
		{"pixel", Response{Kind: ResponsePixel, X: 1, Y: 2, Color: pixmap.Color{R: 0xFF, G: 0x88, B: 0x00}}, "PX 1 2 FF8800\n"},
		{"help no trailing newline", Response{Kind: ResponseHelp, Text: "usage: ..."}, "usage: ...\n"},
		{"help already has trailing newline", Response{Kind: ResponseHelp, Text: "usage: ...\n"}, "usage: ...\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Format(tt.resp))
			if got != tt.want {
				t.Errorf("Format(%+v) = %q, want %q", tt.resp, got, tt.want)
			}
		})
	}
}

func TestFormatParseResponseRoundTrip(t *testing.T) {
	responses := []Response{
		{Kind: ResponseSize, Width: 4, Height: 4},
		{Kind: ResponsePixel, X: 1, Y: 2, Color: pixmap.Color{R: 0xFF, G: 0x88, B: 0x00}},
		{Kind: ResponseState, Enc: "rgb64", Bytes: []byte{1, 2, 3, 4}},
	}

	for _, resp := range responses {
		line := string(Format(resp))
		// Format appends the trailing newline the framing layer would
		// otherwise add on write and strip on read; trim it the same
		// way framing does.
		got, err := ParseResponse(line[:len(line)-1])
		if err != nil {
			t.Fatalf("ParseResponse(Format(%+v)) returned error: %v", resp, err)
		}
		if !reflect.DeepEqual(got, resp) {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, resp)
		}
	}
}

func TestSizeQueryExample(t *testing.T) {
	// §8 scenario 1: SIZE query on a 4x4 canvas.
	got := string(Format(Response{Kind: ResponseSize, Width: 4, Height: 4}))
	if got != "SIZE 4 4\n" {
		t.Errorf("got %q, want %q", got, "SIZE 4 4\n")
	}
}

func TestAlphaSuffixDroppedExample(t *testing.T) {
	// §8 scenario 4: PX 0 0 11223344 then PX 0 0 yields PX 0 0 112233.
	req, err := Parse("PX 0 0 11223344")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Color != (pixmap.Color{R: 0x11, G: 0x22, B: 0x33}) {
		t.Fatalf("alpha not dropped: %v", req.Color)
	}
	got := string(Format(Response{Kind: ResponsePixel, X: 0, Y: 0, Color: req.Color}))
	if got != "PX 0 0 112233\n" {
		t.Errorf("got %q, want %q", got, "PX 0 0 112233\n")
	}
}
