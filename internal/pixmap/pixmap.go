// Package pixmap implements the shared, concurrently-accessed pixel
// canvas at the heart of the server: a fixed-size grid of color cells
// that every protocol handler writes into and every sink reads from.
//
// Cells are stored as individual atomic words so that reads and writes
// from independent connections never contend on a shared lock. There
// is no happens-before relationship between operations on distinct
// cells, and bulk operations ("raw" get/put) are not a consistent
// point-in-time snapshot — see Canvas.GetRaw.
package pixmap

import (
	"fmt"
	"sync/atomic"
)

// Canvas is the capability set shared by every pixmap backend: the
// in-memory Pixmap, the ReplicatingPixmap and the FileBackedPixmap.
type Canvas interface {
	// Size returns the canvas dimensions. Infallible, constant for the
	// lifetime of the canvas.
	Size() (w, h int)

	// Get returns the color at (x, y), or ErrOutOfBounds.
	Get(x, y int) (Color, error)

	// Set writes the color at (x, y), or returns ErrOutOfBounds.
	Set(x, y int, c Color) error

	// GetRaw returns a copy of every cell, row-major, length w*h. Not
	// synchronized with concurrent writers: each cell value returned
	// was valid at some moment during the call, but the whole slice is
	// not a single consistent snapshot.
	GetRaw() []Color

	// PutRaw writes min(len(buf), w*h) cells in order, leaving any
	// remaining cells untouched. Buffers longer than w*h are silently
	// truncated.
	PutRaw(buf []Color)
}

// ErrInvalidSize is returned by New when either dimension is 0.
type ErrInvalidSize struct {
	Width, Height int
}

func (e ErrInvalidSize) Error() string {
	return fmt.Sprintf("invalid pixmap size %dx%d: both dimensions must be >= 1", e.Width, e.Height)
}

// ErrOutOfBounds is returned by Get/Set when the coordinates fall
// outside the canvas.
type ErrOutOfBounds struct {
	X, Y, Width, Height int
}

func (e ErrOutOfBounds) Error() string {
	return fmt.Sprintf("coordinates %d,%d out of bounds for %dx%d canvas", e.X, e.Y, e.Width, e.Height)
}

// Pixmap is the authoritative in-memory canvas: a contiguous,
// row-major buffer of atomic 32-bit words, one per cell.
type Pixmap struct {
	width, height int
	cells         []atomic.Uint32
}

// New creates a Pixmap of the given dimensions, all cells initialized
// to (0, 0, 0). Returns ErrInvalidSize if w or h is 0.
func New(w, h int) (*Pixmap, error) {
	if w < 1 || h < 1 {
		return nil, ErrInvalidSize{Width: w, Height: h}
	}
	return &Pixmap{
		width:  w,
		height: h,
		cells:  make([]atomic.Uint32, w*h),
	}, nil
}

func (p *Pixmap) Size() (w, h int) {
	return p.width, p.height
}

func (p *Pixmap) index(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return 0, ErrOutOfBounds{X: x, Y: y, Width: p.width, Height: p.height}
	}
	return y*p.width + x, nil
}

func (p *Pixmap) Get(x, y int) (Color, error) {
	idx, err := p.index(x, y)
	if err != nil {
		return Color{}, err
	}
	return unpackColor(p.cells[idx].Load()), nil
}

func (p *Pixmap) Set(x, y int, c Color) error {
	idx, err := p.index(x, y)
	if err != nil {
		return err
	}
	p.cells[idx].Store(c.pack())
	return nil
}

func (p *Pixmap) GetRaw() []Color {
	out := make([]Color, len(p.cells))
	for i := range p.cells {
		out[i] = unpackColor(p.cells[i].Load())
	}
	return out
}

func (p *Pixmap) PutRaw(buf []Color) {
	n := len(buf)
	if n > len(p.cells) {
		n = len(p.cells)
	}
	for i := 0; i < n; i++ {
		p.cells[i].Store(buf[i].pack())
	}
}

var _ Canvas = (*Pixmap)(nil)
