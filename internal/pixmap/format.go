package pixmap

import (
	"encoding/binary"
	"fmt"
)

// fileHeaderSize is the two little-endian uint64 dimensions that
// precede the packed cell words in the on-disk pixmap layout shared by
// FileBackedPixmap and the snapshot sink.
const fileHeaderSize = 8 + 8

// EncodeFile serializes w, h and pixels (row-major, length w*h) into
// the on-disk layout FileBackedPixmap maps directly: two little-endian
// uint64 dimensions followed by packed 32-bit color words.
func EncodeFile(w, h int, pixels []Color) []byte {
	buf := make([]byte, fileHeaderSize+4*len(pixels))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(w))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h))
	for i, c := range pixels {
		off := fileHeaderSize + 4*i
		binary.LittleEndian.PutUint32(buf[off:off+4], c.pack())
	}
	return buf
}

// DecodeFile parses the on-disk layout written by EncodeFile, returning
// the stored dimensions and cells. The byte length must match the
// stored dimensions exactly.
func DecodeFile(data []byte) (w, h int, pixels []Color, err error) {
	if len(data) < fileHeaderSize {
		return 0, 0, nil, fmt.Errorf("pixmap file too short: %d bytes", len(data))
	}
	w = int(binary.LittleEndian.Uint64(data[0:8]))
	h = int(binary.LittleEndian.Uint64(data[8:16]))

	want := fileHeaderSize + 4*w*h
	if len(data) != want {
		return 0, 0, nil, fmt.Errorf("pixmap file has %d bytes, want %d for %dx%d", len(data), want, w, h)
	}

	pixels = make([]Color, w*h)
	for i := range pixels {
		off := fileHeaderSize + 4*i
		pixels[i] = unpackColor(binary.LittleEndian.Uint32(data[off : off+4]))
	}
	return w, h, pixels, nil
}
