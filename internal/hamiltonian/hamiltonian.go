// Package hamiltonian holds the per-tile potential samples and the scalar
// parameters of one- and two-species condensates.
package hamiltonian

import (
	"errors"
	"fmt"
	"io"

	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/textio"
)

// Hamiltonian describes a single species on one tile. Potential shares the
// tile shape and stride of every State built on the same lattice.
type Hamiltonian struct {
	grid *lattice.Lattice

	Mass       float64
	Coupling   float64 // self-interaction strength
	CouplingAB float64 // inter-species strength, used by the two-species form
	Omega      float64 // rotation frequency

	// Rotation center in global lattice coordinates.
	RotX, RotY float64

	Potential lattice.Buffer
}

type Option func(*Hamiltonian) error

// WithRotation sets the rotation frequency. A non-zero frequency needs a
// lattice built with rotation, whose halo is wide enough for the
// rotational stencil.
func WithRotation(omega float64) Option {
	return func(h *Hamiltonian) error {
		h.Omega = omega
		return nil
	}
}

// WithRotationCenter overrides the default center, which is the middle of
// the logical grid.
func WithRotationCenter(x, y float64) Option {
	return func(h *Hamiltonian) error {
		h.RotX, h.RotY = x, y
		return nil
	}
}

func WithCouplingAB(g float64) Option {
	return func(h *Hamiltonian) error {
		h.CouplingAB = g
		return nil
	}
}

// WithPotential borrows data as the potential buffer.
func WithPotential(data []float64) Option {
	return func(h *Hamiltonian) error {
		b, err := h.grid.Borrow(data)
		if err != nil {
			return fmt.Errorf("potential: %w", err)
		}
		h.Potential = b
		return nil
	}
}

func New(grid *lattice.Lattice, mass, coupling float64, opts ...Option) (*Hamiltonian, error) {
	if mass <= 0 {
		return nil, fmt.Errorf("hamiltonian: mass must be positive, got %g", mass)
	}

	h := &Hamiltonian{
		grid:     grid,
		Mass:     mass,
		Coupling: coupling,
		RotX:     float64(grid.Width()) * 0.5,
		RotY:     float64(grid.Height()) * 0.5,
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	if h.Omega != 0 && grid.HaloX < lattice.RotatingHalo {
		return nil, fmt.Errorf("%w: omega %g on a lattice with halo %d", ErrRotationHalo, h.Omega, grid.HaloX)
	}
	if h.Potential.Data == nil {
		h.Potential = grid.NewBuffer()
	}
	return h, nil
}

func (h *Hamiltonian) Lattice() *lattice.Lattice { return h.grid }

// V returns the potential at local tile cell (row, col).
func (h *Hamiltonian) V(row, col int) float64 {
	return h.Potential.Data[h.grid.Index(row, col)]
}

// InitializePotential samples f over the whole tile, halo included.
func (h *Hamiltonian) InitializePotential(f lattice.Evaluable) {
	sample(h.grid, h.Potential.Data, f)
}

// ReadPotential fills the potential from a row-major stream of
// Height() x Width() real values, mirroring periodic edges into the halo.
func (h *Hamiltonian) ReadPotential(r io.Reader) error {
	return read(h.grid, h.Potential.Data, r)
}

func sample(g *lattice.Lattice, dst []float64, f lattice.Evaluable) {
	for y, idy := 0, g.Y.Start; y < g.DimY; y, idy = y+1, idy+1 {
		for x, idx := 0, g.X.Start; x < g.DimX; x, idx = x+1, idx+1 {
			dst[g.Index(y, x)] = f.Eval(idx, idy, g)
		}
	}
}

func read(g *lattice.Lattice, dst []float64, r io.Reader) error {
	sc := textio.NewScanner(r)
	for i := 0; i < g.Height(); i++ {
		for j := 0; j < g.Width(); j++ {
			v, err := sc.Real()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("%w: %d of %d values", ErrShortPotential, sc.Count(), g.Height()*g.Width())
				}
				return fmt.Errorf("hamiltonian: read potential: %w", err)
			}
			g.Place(i, j, func(k int) { dst[k] = v })
		}
	}
	return nil
}
