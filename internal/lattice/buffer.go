package lattice

import "fmt"

// Ownership records whether a buffer was allocated for its holder or lent
// by the caller.
type Ownership int

const (
	Owned Ownership = iota
	Borrowed
)

func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}

// Buffer is a tile-sized, row-major real buffer with stride DimX.
type Buffer struct {
	Data []float64
	Own  Ownership
}

// NewBuffer allocates a zeroed buffer for one tile.
func (l *Lattice) NewBuffer() Buffer {
	return Buffer{Data: make([]float64, l.TileSize()), Own: Owned}
}

// Borrow wraps caller memory as a tile buffer. A nil slice allocates a new
// owned buffer instead.
func (l *Lattice) Borrow(data []float64) (Buffer, error) {
	if data == nil {
		return l.NewBuffer(), nil
	}
	if len(data) != l.TileSize() {
		return Buffer{}, fmt.Errorf("%w: got %d cells, tile has %dx%d", ErrSizeMismatch, len(data), l.DimX, l.DimY)
	}
	return Buffer{Data: data, Own: Borrowed}, nil
}
