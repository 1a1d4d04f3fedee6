package observable

import (
	"errors"

	"github.com/san-kum/halosim/internal/comm"
	"github.com/san-kum/halosim/internal/compute"
	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/wave"
)

// ErrLatticeMismatch indicates a state or hamiltonian that was built on a
// different lattice than the one being reduced over.
var ErrLatticeMismatch = errors.New("observable: operands live on different lattices")

type onLattice interface {
	Lattice() *lattice.Lattice
}

func sameLattice(grid *lattice.Lattice, xs ...onLattice) error {
	for _, x := range xs {
		if x.Lattice() != grid {
			return ErrLatticeMismatch
		}
	}
	return nil
}

// cell is one stencil site: the local tile offset k, the global coordinates
// (x, y) and the five field values around it.
type cell struct {
	k    int
	x, y int

	center, up, down, left, right complex128
}

type field struct {
	re, im []float64
}

func fieldOf(s *wave.State) field { return field{re: s.Real.Data, im: s.Imag.Data} }

func (f field) at(k int) complex128 { return complex(f.re[k], f.im[k]) }

// walk calls visit for every cell of the stencil region of grid. Rows are
// split across the compute backend; acc has width slots.
func walk(grid *lattice.Lattice, f field, width int, visit func(c *cell, acc []complex128)) []complex128 {
	r := grid.StencilRegion()
	if r.Empty() {
		return make([]complex128, width)
	}

	stride := grid.DimX
	return compute.GetBackend().Reduce(r.Rows(), width, func(lo, hi int, acc []complex128) {
		var c cell
		for i := r.Row0 + lo; i < r.Row0+hi; i++ {
			c.y = r.Y0 + i - r.Row0
			for j := r.Col0; j < r.Col1; j++ {
				k := grid.Index(i, j)
				c.k = k
				c.x = r.X0 + j - r.Col0
				c.center = f.at(k)
				c.up = f.at(k - stride)
				c.down = f.at(k + stride)
				c.left = f.at(k - 1)
				c.right = f.at(k + 1)
				visit(&c, acc)
			}
		}
	})
}

// normalizer returns norm2, or the local squared norm of the states when
// norm2 is 0.
func normalizer(norm2 float64, states ...*wave.State) (float64, error) {
	if norm2 != 0 {
		return norm2, nil
	}
	for _, s := range states {
		n, err := s.SquaredNorm(false)
		if err != nil {
			return 0, err
		}
		norm2 += n
	}
	return norm2, nil
}

// scale normalises a stencil sum. A zero norm2 only reaches here from a
// node whose local norm is zero, which has nothing to contribute; this
// includes a node with an empty inner region.
func scale(grid *lattice.Lattice, sum complex128, norm2 float64) float64 {
	if norm2 == 0 {
		return 0
	}
	return real(sum) / norm2 * grid.CellArea()
}

func reduceGlobal(grid *lattice.Lattice, v float64, global bool) (float64, error) {
	if !global {
		return v, nil
	}
	return comm.Sum(grid.Comm, v)
}
