package framing

import "strings"

// SplitDatagram splits one UDP datagram into its newline-separated
// request lines. A trailing empty line (from a datagram ending in
// \n) is dropped; anything else, including a final line with no
// trailing newline, is kept.
func SplitDatagram(payload []byte) []string {
	s := string(payload)
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// JoinReplies concatenates the formatted responses generated while
// processing one datagram's requests into a single reply payload.
func JoinReplies(replies [][]byte) []byte {
	total := 0
	for _, r := range replies {
		total += len(r)
	}
	out := make([]byte, 0, total)
	for _, r := range replies {
		out = append(out, r...)
	}
	return out
}
