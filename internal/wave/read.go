package wave

import (
	"errors"
	"fmt"
	"io"

	"github.com/san-kum/halosim/internal/textio"
)

// ReadState fills the tile from a row-major stream of Height() x Width()
// complex values after discarding skip leading values. Every value lands in
// the body cell and in any periodic halo band or corner that mirrors it.
func (s *State) ReadState(r io.Reader, skip int) error {
	g := s.grid
	sc := textio.NewScanner(r)
	if err := sc.Skip(skip); err != nil {
		return streamErr(err)
	}

	for i := 0; i < g.Height(); i++ {
		for j := 0; j < g.Width(); j++ {
			v, err := sc.Complex()
			if err != nil {
				return streamErr(err)
			}
			g.Place(i, j, func(k int) { s.set(k, v) })
		}
	}
	return nil
}

func streamErr(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrShortStream
	}
	return fmt.Errorf("wave: read state: %w", err)
}
