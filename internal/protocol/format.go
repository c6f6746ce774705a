package protocol

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Format renders a Response as the bytes to write on the wire,
// including the trailing newline. There is no Response value for a
// successful SetPixel — the connection handler simply does not call
// Format in that case.
func Format(r Response) []byte {
	switch r.Kind {
	case ResponseSize:
		return []byte(fmt.Sprintf("SIZE %d %d\n", r.Width, r.Height))
	case ResponsePixel:
		return []byte(fmt.Sprintf("PX %d %d %s\n", r.X, r.Y, r.Color.String()))
	case ResponseState:
		body := base64.StdEncoding.EncodeToString(r.Bytes)
		return []byte(fmt.Sprintf("STATE %s %s\n", r.Enc, body))
	case ResponseHelp:
		if strings.HasSuffix(r.Text, "\n") {
			return []byte(r.Text)
		}
		return []byte(r.Text + "\n")
	default:
		return nil
	}
}

// ParseResponse is the inverse of Format; it exists mainly so clients
// (and round-trip tests) can decode what a server sent back.
func ParseResponse(line string) (Response, error) {
	tokens, positions, err := tokenize(line)
	if err != nil {
		return Response{}, err
	}
	if len(tokens) == 0 {
		return Response{}, syntaxErr(0, "empty response")
	}

	switch strings.ToUpper(tokens[0]) {
	case "SIZE":
		if len(tokens) != 3 {
			return Response{}, syntaxErr(0, "SIZE response requires width and height")
		}
		w, err := parseUint(tokens[1], positions[1])
		if err != nil {
			return Response{}, err
		}
		h, err := parseUint(tokens[2], positions[2])
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: ResponseSize, Width: w, Height: h}, nil

	case "PX":
		if len(tokens) != 4 {
			return Response{}, syntaxErr(0, "PX response requires x, y and a color")
		}
		x, err := parseUint(tokens[1], positions[1])
		if err != nil {
			return Response{}, err
		}
		y, err := parseUint(tokens[2], positions[2])
		if err != nil {
			return Response{}, err
		}
		color, err := parseColor(tokens[3], positions[3])
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: ResponsePixel, X: x, Y: y, Color: color}, nil

	case "STATE":
		if len(tokens) != 3 {
			return Response{}, syntaxErr(0, "STATE response requires an encoding and a body")
		}
		raw, err := base64.StdEncoding.DecodeString(tokens[2])
		if err != nil {
			return Response{}, syntaxErr(positions[2], "invalid base64 body: %v", err)
		}
		return Response{Kind: ResponseState, Enc: strings.ToLower(tokens[1]), Bytes: raw}, nil

	default:
		return Response{}, syntaxErr(0, "unrecognized response %q", tokens[0])
	}
}
