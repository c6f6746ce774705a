package conn

// Canned help text, keyed by topic. These strings are stable but
// otherwise unspecified by the protocol (spec.md §7): clients should
// only rely on a Help response being present, not on its exact
// wording.
var helpText = map[string]string{
	"": `pixelflut: a collaborative pixel canvas.

Commands:
  HELP [topic]        show this text, or help for a topic (size, px, state)
  SIZE                query canvas dimensions
  PX <x> <y>          query the color at (x, y)
  PX <x> <y> <hex>    set the color at (x, y) to a 6 or 8 digit hex color
  STATE <encoding>     fetch the whole canvas as a base64-framed payload
`,
	"size": `SIZE returns the canvas dimensions as "SIZE <width> <height>".
It takes no arguments.`,
	"px": `PX <x> <y> queries the color at (x, y), replying "PX <x> <y> <RRGGBB>".
PX <x> <y> <hex> sets the color at (x, y). <hex> is 6 hex digits (RRGGBB)
or 8 (RRGGBBAA, alpha is ignored). Coordinates are non-negative decimal
integers. Out-of-bounds coordinates produce an error line, not a crash.`,
	"state": `STATE <encoding> fetches a snapshot of the whole canvas, replying
"STATE <encoding> <base64 body>". The only encoding defined today is
rgb64.`,
}

// HelpText returns the canned text for a topic ("" for the general
// overview). Parse already rejects any topic not in this set.
func HelpText(topic string) string {
	return helpText[topic]
}
