// Package quadrant reassembles a full-resolution field from the four
// parity sub-samples of a coarser lattice.
//
// Plane [py][px] holds the values whose row has parity py and whose column
// has parity px, so full-resolution cell (Y, X) lives at
// plane[Y%2][X%2][(Y/2)*Stride + X/2].
package quadrant

import (
	"errors"
	"fmt"

	"github.com/san-kum/halosim/internal/lattice"
)

var (
	// ErrRange indicates a request that reads past a source plane or
	// writes past the destination.
	ErrRange = errors.New("quadrant: region out of range")
)

type Quadrants struct {
	Planes [2][2][]float64
	Stride int
}

// FromLattice wraps four tile buffers of l, ordered even/even, even/odd,
// odd/even, odd/odd.
func FromLattice(l *lattice.Lattice, q00, q01, q10, q11 []float64) (Quadrants, error) {
	var q Quadrants
	for i, p := range [][]float64{q00, q01, q10, q11} {
		if p == nil {
			return Quadrants{}, fmt.Errorf("quadrant %d: %w: nil plane", i, lattice.ErrSizeMismatch)
		}
		b, err := l.Borrow(p)
		if err != nil {
			return Quadrants{}, fmt.Errorf("quadrant %d: %w", i, err)
		}
		q.Planes[i/2][i%2] = b.Data
	}
	q.Stride = l.DimX
	return q, nil
}

// MergeLine interleaves evens and odds into columns [x, x+width) of dest,
// indexed by absolute column. Source element i covers columns 2i and 2i+1.
// It returns the number of values written, which is width on success.
func MergeLine(evens, odds []float64, x, width int, dest []float64) (int, error) {
	if err := checkLine(len(evens), len(odds), x, width); err != nil {
		return 0, err
	}
	if x+width > len(dest) {
		return 0, fmt.Errorf("%w: columns [%d,%d) past destination of %d", ErrRange, x, x+width, len(dest))
	}
	return merge(evens, odds, x, width, dest[x:]), nil
}

// MergeLineToBuffer is MergeLine writing to dest[0:width].
func MergeLineToBuffer(evens, odds []float64, x, width int, dest []float64) (int, error) {
	if err := checkLine(len(evens), len(odds), x, width); err != nil {
		return 0, err
	}
	if width > len(dest) {
		return 0, fmt.Errorf("%w: %d columns past destination of %d", ErrRange, width, len(dest))
	}
	return merge(evens, odds, x, width, dest), nil
}

// checkLine verifies that columns [x, x+width) are backed by the source
// lines.
func checkLine(evens, odds, x, width int) error {
	if x < 0 || width < 0 {
		return fmt.Errorf("%w: columns [%d,%d)", ErrRange, x, x+width)
	}
	if width == 0 {
		return nil
	}
	end := x + width
	if e := end - 1 - (end-1)%2; e >= x && e/2 >= evens {
		return fmt.Errorf("%w: column %d needs %d even values, have %d", ErrRange, e, e/2+1, evens)
	}
	if o := end - 1 - end%2; o >= x && o/2 >= odds {
		return fmt.Errorf("%w: column %d needs %d odd values, have %d", ErrRange, o, o/2+1, odds)
	}
	return nil
}

func merge(evens, odds []float64, x, width int, dest []float64) int {
	e, o := x/2, x/2
	end := x + width
	n := 0

	col := x
	if col%2 == 1 && col < end {
		dest[n] = odds[o]
		o++
		n++
		col++
	}
	for ; col < end-end%2; col += 2 {
		dest[n] = evens[e]
		dest[n+1] = odds[o]
		e++
		o++
		n += 2
	}
	if col < end {
		dest[n] = evens[e]
		n++
	}
	return n
}

// Sample fills rows [y, y+height) and columns [x, x+width) of dest, a
// full-resolution canvas with row stride destStride, from q. It returns
// the number of rows written.
func Sample(q Quadrants, x, y, width, height int, dest []float64, destStride int) (int, error) {
	if err := q.check(x, y, width, height); err != nil {
		return 0, err
	}
	if err := checkDest(len(dest), destStride, x+width, y+height); err != nil {
		return 0, err
	}
	return q.rows(y, width, height, func(row int, evens, odds []float64) int {
		return merge(evens, odds, x, width, dest[(y+row)*destStride+x:])
	}), nil
}

// SampleToBuffer performs the same interleave as Sample but writes the
// region to the top-left corner of dest.
func SampleToBuffer(q Quadrants, x, y, width, height int, dest []float64, destStride int) (int, error) {
	if err := q.check(x, y, width, height); err != nil {
		return 0, err
	}
	if err := checkDest(len(dest), destStride, width, height); err != nil {
		return 0, err
	}
	return q.rows(y, width, height, func(row int, evens, odds []float64) int {
		return merge(evens, odds, x, width, dest[row*destStride:])
	}), nil
}

// SampleComplex runs Sample on the real and imaginary planes.
func SampleComplex(re, im Quadrants, x, y, width, height int, destRe, destIm []float64, destStride int) (int, error) {
	if _, err := Sample(re, x, y, width, height, destRe, destStride); err != nil {
		return 0, fmt.Errorf("real: %w", err)
	}
	n, err := Sample(im, x, y, width, height, destIm, destStride)
	if err != nil {
		return 0, fmt.Errorf("imaginary: %w", err)
	}
	return n, nil
}

// rows walks full-resolution rows [y, y+height), handing line the row
// offset and the pair of source lines for that row's parity.
func (q Quadrants) rows(y, width, height int, line func(row int, evens, odds []float64) int) int {
	n := 0
	for r := y; r < y+height; r++ {
		p := q.Planes[r%2]
		off := (r / 2) * q.Stride
		if line(r-y, p[0][off:], p[1][off:]) != width {
			break
		}
		n++
	}
	return n
}

// Split is the inverse of Sample over a whole field: it divides a
// width x height row-major field into its four parity planes.
func Split(data []float64, width, height int) (Quadrants, error) {
	if width < 1 || height < 1 || len(data) != width*height {
		return Quadrants{}, fmt.Errorf("%w: %d values for %dx%d", ErrRange, len(data), width, height)
	}
	q := Quadrants{Stride: (width + 1) / 2}
	n := q.Stride * ((height + 1) / 2)
	for py := range q.Planes {
		for px := range q.Planes[py] {
			q.Planes[py][px] = make([]float64, n)
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			q.Planes[y%2][x%2][(y/2)*q.Stride+x/2] = data[y*width+x]
		}
	}
	return q, nil
}

func (q Quadrants) check(x, y, width, height int) error {
	if x < 0 || y < 0 || width < 0 || height < 0 {
		return fmt.Errorf("%w: origin (%d,%d) size %dx%d", ErrRange, x, y, width, height)
	}
	if width == 0 || height == 0 {
		return nil
	}
	if (x+width-1)/2 >= q.Stride {
		return fmt.Errorf("%w: column %d beyond stride %d", ErrRange, x+width-1, q.Stride)
	}
	last := ((y+height-1)/2)*q.Stride + (x+width-1)/2
	for py := range q.Planes {
		for px := range q.Planes[py] {
			if last >= len(q.Planes[py][px]) {
				return fmt.Errorf("%w: plane %d%d has %d values, need %d", ErrRange, py, px, len(q.Planes[py][px]), last+1)
			}
		}
	}
	return nil
}

func checkDest(n, stride, cols, rows int) error {
	if rows == 0 || cols == 0 {
		return nil
	}
	if cols > stride {
		return fmt.Errorf("%w: %d columns wider than destination stride %d", ErrRange, cols, stride)
	}
	if need := (rows-1)*stride + cols; need > n {
		return fmt.Errorf("%w: destination has %d values, need %d", ErrRange, n, need)
	}
	return nil
}
