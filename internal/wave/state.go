// Package wave holds the complex field of one tile as two parallel real
// buffers and extracts derived quantities from its inner region.
package wave

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/halosim/internal/comm"
	"github.com/san-kum/halosim/internal/lattice"
)

// ErrShortStream indicates a state stream ended before the full grid was read.
var ErrShortStream = errors.New("wave: stream ended before the grid was complete")

// State is a complex field sampled on one tile, row-major with stride
// Lattice().DimX.
type State struct {
	grid *lattice.Lattice
	Real lattice.Buffer
	Imag lattice.Buffer
}

// New builds a state on grid. Nil buffers are allocated; non-nil ones are
// borrowed and must match the tile size.
func New(grid *lattice.Lattice, re, im []float64) (*State, error) {
	rb, err := grid.Borrow(re)
	if err != nil {
		return nil, fmt.Errorf("real part: %w", err)
	}
	ib, err := grid.Borrow(im)
	if err != nil {
		return nil, fmt.Errorf("imaginary part: %w", err)
	}
	return &State{grid: grid, Real: rb, Imag: ib}, nil
}

func (s *State) Lattice() *lattice.Lattice { return s.grid }

// At returns the value at local tile cell (row, col).
func (s *State) At(row, col int) complex128 {
	i := s.grid.Index(row, col)
	return complex(s.Real.Data[i], s.Imag.Data[i])
}

func (s *State) set(i int, v complex128) {
	s.Real.Data[i] = real(v)
	s.Imag.Data[i] = imag(v)
}

// InitState samples f over the whole tile, halo included, at global
// coordinates.
func (s *State) InitState(f lattice.ComplexEvaluable) {
	g := s.grid
	for y, idy := 0, g.Y.Start; y < g.DimY; y, idy = y+1, idy+1 {
		for x, idx := 0, g.X.Start; x < g.DimX; x, idx = x+1, idx+1 {
			s.set(g.Index(y, x), f.Eval(idx, idy, g))
		}
	}
}

// SquaredNorm sums |psi|^2 over the inner region. With global set it is a
// collective over every node of the lattice.
func (s *State) SquaredNorm(global bool) (float64, error) {
	g := s.grid
	r := g.InnerRegion()
	norm2 := 0.0
	for i := r.Row0; i < r.Row1; i++ {
		for j := r.Col0; j < r.Col1; j++ {
			k := g.Index(i, j)
			norm2 += s.Real.Data[k]*s.Real.Data[k] + s.Imag.Data[k]*s.Imag.Data[k]
		}
	}
	if !global {
		return norm2, nil
	}
	return comm.Sum(g.Comm, norm2)
}

// ParticleDensity writes |psi|^2 for every inner cell into dst, allocating
// a tile buffer when dst is nil. Halo cells of dst are left untouched.
func (s *State) ParticleDensity(dst []float64) ([]float64, error) {
	dst, err := s.dest(dst)
	if err != nil {
		return nil, err
	}
	g := s.grid
	r := g.InnerRegion()
	for i := r.Row0; i < r.Row1; i++ {
		for j := r.Col0; j < r.Col1; j++ {
			k := g.Index(i, j)
			dst[k] = s.Real.Data[k]*s.Real.Data[k] + s.Imag.Data[k]*s.Imag.Data[k]
		}
	}
	return dst, nil
}

// Phase writes the phase of every inner cell into dst. The phase is
// acos(re/|psi|) carrying the sign of im, and 0 where psi vanishes; for a
// negative real value the result is 0 rather than pi.
func (s *State) Phase(dst []float64) ([]float64, error) {
	dst, err := s.dest(dst)
	if err != nil {
		return nil, err
	}
	g := s.grid
	r := g.InnerRegion()
	for i := r.Row0; i < r.Row1; i++ {
		for j := r.Col0; j < r.Col1; j++ {
			k := g.Index(i, j)
			dst[k] = phase(s.Real.Data[k], s.Imag.Data[k])
		}
	}
	return dst, nil
}

func phase(re, im float64) float64 {
	norm := math.Sqrt(re*re + im*im)
	if norm == 0 {
		return 0
	}
	return math.Acos(re/norm) * sign(im)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (s *State) dest(dst []float64) ([]float64, error) {
	b, err := s.grid.Borrow(dst)
	if err != nil {
		return nil, err
	}
	return b.Data, nil
}
