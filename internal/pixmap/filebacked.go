package pixmap

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileBackedPixmap maps its cell array onto a file: an 8+8 byte
// little-endian (width, height) header followed by w*h packed 32-bit
// cell words, the same layout the snapshot sink writes (see
// internal/sink). Cell access goes through the mapping directly, so it
// is as non-blocking as the in-memory Pixmap.
type FileBackedPixmap struct {
	width, height int
	file          *os.File
	mapping       []byte
}

// OpenFileBacked opens (or creates) path as a file-backed canvas of
// the given dimensions. If the file is empty it is initialized with
// w, h and zeroed cells; otherwise the stored dimensions must match w,
// h exactly or an error is returned.
func OpenFileBacked(path string, w, h int) (*FileBackedPixmap, error) {
	if w < 1 || h < 1 {
		return nil, ErrInvalidSize{Width: w, Height: h}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening file-backed pixmap %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file-backed pixmap %q: %w", path, err)
	}

	wantSize := int64(fileHeaderSize + 4*w*h)

	if info.Size() == 0 {
		if err := f.Truncate(wantSize); err != nil {
			f.Close()
			return nil, fmt.Errorf("sizing file-backed pixmap %q: %w", path, err)
		}
		header := make([]byte, fileHeaderSize)
		binary.LittleEndian.PutUint64(header[0:8], uint64(w))
		binary.LittleEndian.PutUint64(header[8:16], uint64(h))
		if _, err := f.WriteAt(header, 0); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing header for %q: %w", path, err)
		}
	} else {
		header := make([]byte, fileHeaderSize)
		if _, err := f.ReadAt(header, 0); err != nil {
			f.Close()
			return nil, fmt.Errorf("reading header from %q: %w", path, err)
		}
		storedW := binary.LittleEndian.Uint64(header[0:8])
		storedH := binary.LittleEndian.Uint64(header[8:16])
		if storedW != uint64(w) || storedH != uint64(h) {
			f.Close()
			return nil, fmt.Errorf("file-backed pixmap %q has size %dx%d, requested %dx%d", path, storedW, storedH, w, h)
		}
		if info.Size() != wantSize {
			f.Close()
			return nil, fmt.Errorf("file-backed pixmap %q has wrong length %d, expected %d", path, info.Size(), wantSize)
		}
	}

	mapping, err := unix.Mmap(int(f.Fd()), 0, int(wantSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap file-backed pixmap %q: %w", path, err)
	}

	return &FileBackedPixmap{
		width:   w,
		height:  h,
		file:    f,
		mapping: mapping,
	}, nil
}

// Close unmaps and closes the backing file.
func (p *FileBackedPixmap) Close() error {
	if err := unix.Munmap(p.mapping); err != nil {
		p.file.Close()
		return fmt.Errorf("munmap file-backed pixmap: %w", err)
	}
	return p.file.Close()
}

func (p *FileBackedPixmap) Size() (w, h int) {
	return p.width, p.height
}

func (p *FileBackedPixmap) cellOffset(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return 0, ErrOutOfBounds{X: x, Y: y, Width: p.width, Height: p.height}
	}
	return fileHeaderSize + 4*(y*p.width+x), nil
}

func (p *FileBackedPixmap) Get(x, y int) (Color, error) {
	off, err := p.cellOffset(x, y)
	if err != nil {
		return Color{}, err
	}
	word := binary.LittleEndian.Uint32(p.mapping[off : off+4])
	return unpackColor(word), nil
}

func (p *FileBackedPixmap) Set(x, y int, c Color) error {
	off, err := p.cellOffset(x, y)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p.mapping[off:off+4], c.pack())
	return nil
}

func (p *FileBackedPixmap) GetRaw() []Color {
	n := p.width * p.height
	out := make([]Color, n)
	for i := 0; i < n; i++ {
		off := fileHeaderSize + 4*i
		out[i] = unpackColor(binary.LittleEndian.Uint32(p.mapping[off : off+4]))
	}
	return out
}

func (p *FileBackedPixmap) PutRaw(buf []Color) {
	n := len(buf)
	if max := p.width * p.height; n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		off := fileHeaderSize + 4*i
		binary.LittleEndian.PutUint32(p.mapping[off:off+4], buf[i].pack())
	}
}

var _ Canvas = (*FileBackedPixmap)(nil)
