package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rnxpyke/pixelflut-go/internal/pixmap"
)

// SyntaxError reports a malformed request line and the byte offset at
// which the problem was found.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

func syntaxErr(pos int, format string, args ...interface{}) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// knownEncodings is the fixed set of names STATE accepts. rgb64 is the
// only one defined today; the grammar reserves the concept of other
// encodings for the future, but an unrecognized name is a parse-time
// Syntax error, not a runtime dispatch error.
var knownEncodings = map[string]bool{
	"rgb64": true,
}

var helpTopics = map[string]bool{
	"size":  true,
	"px":    true,
	"state": true,
}

// Parse parses a single request line, with the trailing newline (and
// any tolerated preceding carriage return) already stripped by the
// framing layer. Extra whitespace of any kind — leading, trailing, or
// doubled between fields — is a syntax error; the grammar has exactly
// one ASCII space between fields.
func Parse(line string) (Request, error) {
	tokens, positions, err := tokenize(line)
	if err != nil {
		return Request{}, err
	}
	if len(tokens) == 0 {
		return Request{}, syntaxErr(0, "empty request")
	}

	keyword := strings.ToUpper(tokens[0])
	switch keyword {
	case "SIZE":
		if len(tokens) != 1 {
			return Request{}, syntaxErr(positions[1], "SIZE takes no arguments")
		}
		return Request{Kind: RequestGetSize}, nil

	case "PX":
		return parsePX(tokens, positions)

	case "STATE":
		if len(tokens) != 2 {
			return Request{}, syntaxErr(positions[min(len(positions)-1, 1)], "STATE requires exactly one argument")
		}
		enc := tokens[1]
		if !knownEncodings[strings.ToLower(enc)] {
			return Request{}, syntaxErr(positions[1], "unknown state encoding %q", enc)
		}
		return Request{Kind: RequestGetState, Enc: strings.ToLower(enc)}, nil

	case "HELP":
		if len(tokens) > 2 {
			return Request{}, syntaxErr(positions[2], "HELP takes at most one argument")
		}
		if len(tokens) == 1 {
			return Request{Kind: RequestHelp}, nil
		}
		topic := strings.ToLower(tokens[1])
		if !helpTopics[topic] {
			return Request{}, syntaxErr(positions[1], "unknown help topic %q", tokens[1])
		}
		return Request{Kind: RequestHelp, Topic: topic}, nil

	default:
		return Request{}, syntaxErr(0, "unknown command %q", tokens[0])
	}
}

func parsePX(tokens []string, positions []int) (Request, error) {
	if len(tokens) != 3 && len(tokens) != 4 {
		pos := 0
		if len(tokens) > 0 {
			pos = positions[len(positions)-1]
		}
		return Request{}, syntaxErr(pos, "PX requires 2 or 3 arguments, got %d", len(tokens)-1)
	}

	x, err := parseUint(tokens[1], positions[1])
	if err != nil {
		return Request{}, err
	}
	y, err := parseUint(tokens[2], positions[2])
	if err != nil {
		return Request{}, err
	}

	if len(tokens) == 3 {
		return Request{Kind: RequestGetPixel, X: x, Y: y}, nil
	}

	color, err := parseColor(tokens[3], positions[3])
	if err != nil {
		return Request{}, err
	}
	return Request{Kind: RequestSetPixel, X: x, Y: y, Color: color}, nil
}

func parseUint(s string, pos int) (int, error) {
	if s == "" {
		return 0, syntaxErr(pos, "expected a non-negative integer, got empty field")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, syntaxErr(pos+i, "expected a digit, got %q", s[i])
		}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, syntaxErr(pos, "invalid integer %q", s)
	}
	return int(v), nil
}

func parseColor(s string, pos int) (pixmap.Color, error) {
	if len(s) != 6 && len(s) != 8 {
		return pixmap.Color{}, syntaxErr(pos, "color must be 6 or 8 hex digits, got %d", len(s))
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return pixmap.Color{}, syntaxErr(pos+i, "expected a hex digit, got %q", s[i])
		}
	}
	r := hexByte(s[0], s[1])
	g := hexByte(s[2], s[3])
	b := hexByte(s[4], s[5])
	// bytes 6-7, if present, are an alpha channel; ignored per spec.
	return pixmap.Color{R: r, G: g, B: b}, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default: // 'A'-'F'
		return c - 'A' + 10
	}
}

func hexByte(hi, lo byte) uint8 {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

// tokenize splits line on single ASCII spaces, rejecting leading,
// trailing, or doubled whitespace and any non-space whitespace
// character (tab, stray carriage return). It returns each token
// alongside the byte offset at which it starts.
func tokenize(line string) ([]string, []int, error) {
	if len(line) == 0 {
		return nil, nil, syntaxErr(0, "empty request")
	}
	if line[0] == ' ' {
		return nil, nil, syntaxErr(0, "unexpected leading whitespace")
	}
	if line[len(line)-1] == ' ' {
		return nil, nil, syntaxErr(len(line)-1, "unexpected trailing whitespace")
	}

	var tokens []string
	var positions []int
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			if i+1 < len(line) && line[i+1] == ' ' {
				return nil, nil, syntaxErr(i+1, "unexpected extra whitespace")
			}
			tokens = append(tokens, line[start:i])
			positions = append(positions, start)
			start = i + 1
		case '\t', '\r', '\n':
			return nil, nil, syntaxErr(i, "unexpected whitespace character")
		}
	}
	tokens = append(tokens, line[start:])
	positions = append(positions, start)
	return tokens, positions, nil
}
