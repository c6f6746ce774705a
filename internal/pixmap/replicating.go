package pixmap

import "math/rand/v2"

// ReplicatingPixmap composes a primary canvas with N secondary
// canvases and a sampling probability. Writes always land on the
// primary; each secondary additionally receives the write with
// independent probability p. Reads are always served from the
// primary.
//
// This exists so a sink can hold a cheap approximate mirror of the
// canvas without contending on the authoritative cells: a sink reading
// from a secondary never blocks, or is blocked by, a writer on the
// primary.
type ReplicatingPixmap struct {
	primary     Canvas
	secondaries []Canvas
	p           float64
}

// NewReplicating wraps primary with secondaries, each written with
// independent probability p on every Set.
func NewReplicating(primary Canvas, p float64, secondaries ...Canvas) *ReplicatingPixmap {
	return &ReplicatingPixmap{
		primary:     primary,
		secondaries: secondaries,
		p:           p,
	}
}

func (r *ReplicatingPixmap) Size() (w, h int) {
	return r.primary.Size()
}

func (r *ReplicatingPixmap) Get(x, y int) (Color, error) {
	return r.primary.Get(x, y)
}

func (r *ReplicatingPixmap) Set(x, y int, c Color) error {
	if err := r.primary.Set(x, y, c); err != nil {
		return err
	}
	for _, s := range r.secondaries {
		if rand.Float64() < r.p {
			_ = s.Set(x, y, c)
		}
	}
	return nil
}

func (r *ReplicatingPixmap) GetRaw() []Color {
	return r.primary.GetRaw()
}

func (r *ReplicatingPixmap) PutRaw(buf []Color) {
	r.primary.PutRaw(buf)
}

var _ Canvas = (*ReplicatingPixmap)(nil)
