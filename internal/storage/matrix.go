package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/wave"
)

// Every value of a matrix file takes a fixed number of bytes, so each node
// can write its owned block at a computed offset into one shared file.
const (
	RealWidth    = 14
	ComplexWidth = 30
)

// ComplexName is the snapshot file of component (counted from 1) at
// iteration.
func ComplexName(component, iteration int) string {
	return fmt.Sprintf("%d-%d-iter-comp.dat", component, iteration)
}

func RealName(component, iteration int) string {
	return fmt.Sprintf("%d-%d-iter-real.dat", component, iteration)
}

// TagName is the file of a derived real field such as a density.
func TagName(iteration int, tag string) string {
	return fmt.Sprintf("%d-%s", iteration, tag)
}

func formatReal(v float64, last bool) string {
	if last {
		return fmt.Sprintf("%+.5e\n ", v)
	}
	return fmt.Sprintf("%+.5e  ", v)
}

func formatComplex(re, im float64, last bool) string {
	if last {
		return fmt.Sprintf("(%+.5e,%+.5e)\n  ", re, im)
	}
	return fmt.Sprintf("(%+.5e,%+.5e)   ", re, im)
}

// writeInner writes the owned block of g into the shared file at path.
// cell formats the value at tile offset k; last marks the final column of
// a logical row.
func writeInner(path string, g *lattice.Lattice, width int, cell func(k int, last bool) string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	total := int64(g.Width()) * int64(g.Height()) * int64(width)
	if err := f.Truncate(total); err != nil {
		return err
	}

	r := g.InnerRegion()
	if r.Empty() {
		return nil
	}

	buf := make([]byte, 0, r.Cols()*width)
	for i := r.Row0; i < r.Row1; i++ {
		buf = buf[:0]
		for j := r.Col0; j < r.Col1; j++ {
			x := r.X0 + j - r.Col0
			s := cell(g.Index(i, j), x == g.Width()-1)
			if len(s) != width {
				return fmt.Errorf("storage: value %q does not fit %d bytes", s, width)
			}
			buf = append(buf, s...)
		}
		y := r.Y0 + i - r.Row0
		off := (int64(y)*int64(g.Width()) + int64(r.X0)) * int64(width)
		if _, err := f.WriteAt(buf, off); err != nil {
			return err
		}
	}
	return nil
}

// StampReal writes the owned block of a real tile buffer to dir/name.
func StampReal(dir, name string, g *lattice.Lattice, data []float64) error {
	if len(data) != g.TileSize() {
		return fmt.Errorf("%w: %d values", lattice.ErrSizeMismatch, len(data))
	}
	return writeInner(filepath.Join(dir, name), g, RealWidth, func(k int, last bool) string {
		return formatReal(data[k], last)
	})
}

// Stamp writes the complex snapshot and its real part for component at
// iteration.
func Stamp(dir string, st *wave.State, component, iteration int) error {
	g := st.Lattice()
	re, im := st.Real.Data, st.Imag.Data

	err := writeInner(filepath.Join(dir, ComplexName(component, iteration)), g, ComplexWidth, func(k int, last bool) string {
		return formatComplex(re[k], im[k], last)
	})
	if err != nil {
		return err
	}
	return StampReal(dir, RealName(component, iteration), g, re)
}
