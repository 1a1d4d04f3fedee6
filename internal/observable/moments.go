package observable

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/halosim/internal/comm"
	"github.com/san-kum/halosim/internal/hamiltonian"
	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/wave"
)

// Moments holds the first moment and the variance along each axis.
type Moments struct {
	MeanX, VarX float64
	MeanY, VarY float64
}

// finish turns the normalised raw moments {x, x^2, y, y^2} into Moments.
// With global set the raw moments are summed across nodes before the
// variances are formed.
func finish(grid *lattice.Lattice, raw []float64, global bool) (Moments, error) {
	if global {
		var err error
		if raw, err = comm.SumAll(grid.Comm, raw); err != nil {
			return Moments{}, err
		}
	}
	return Moments{
		MeanX: raw[0],
		VarX:  raw[1] - raw[0]*raw[0],
		MeanY: raw[2],
		VarY:  raw[3] - raw[2]*raw[2],
	}, nil
}

// MeanPosition returns <x>, <y> and their variances. Positions are global
// lattice coordinates measured from (originX, originY), in physical units.
func MeanPosition(grid *lattice.Lattice, st *wave.State, originX, originY int, norm2 float64, global bool) (Moments, error) {
	if err := sameLattice(grid, st); err != nil {
		return Moments{}, err
	}
	norm2, err := normalizer(norm2, st)
	if err != nil {
		return Moments{}, err
	}

	dx, dy := grid.DeltaX, grid.DeltaY
	acc := walk(grid, fieldOf(st), 4, func(c *cell, acc []complex128) {
		rho := cmplx.Conj(c.center) * c.center
		px := complex(dx*float64(c.x-originX), 0)
		py := complex(dy*float64(c.y-originY), 0)
		acc[0] += rho * px
		acc[1] += rho * px * px
		acc[2] += rho * py
		acc[3] += rho * py * py
	})

	raw := make([]float64, 4)
	for i := range raw {
		raw[i] = scale(grid, acc[i], norm2)
	}
	return finish(grid, raw, global)
}

// MeanMomentum returns <px>, <py> and the momentum variances from central
// differences. Rows grow downwards, so py is taken as up minus down.
func MeanMomentum(grid *lattice.Lattice, st *wave.State, norm2 float64, global bool) (Moments, error) {
	if err := sameLattice(grid, st); err != nil {
		return Moments{}, err
	}
	norm2, err := normalizer(norm2, st)
	if err != nil {
		return Moments{}, err
	}

	acc := walk(grid, fieldOf(st), 4, func(c *cell, acc []complex128) {
		psi := cmplx.Conj(c.center)
		acc[0] += psi * (c.right - c.left)
		acc[1] += psi * (c.right - 2*c.center + c.left)
		acc[2] += psi * (c.up - c.down)
		acc[3] += psi * (c.up - 2*c.center + c.down)
	})

	dx, dy := grid.DeltaX, grid.DeltaY
	acc[0] *= complex(0, -0.5/dx)
	acc[1] *= complex(-1/(dx*dx), 0)
	acc[2] *= complex(0, -0.5/dy)
	acc[3] *= complex(-1/(dy*dy), 0)

	raw := make([]float64, 4)
	for i := range raw {
		raw[i] = scale(grid, acc[i], norm2)
	}
	return finish(grid, raw, global)
}

// Snapshot is one row of the expectation table of a single-species run.
type Snapshot struct {
	Energy float64 `json:"energy"`
	Px     float64 `json:"px"`
	Py     float64 `json:"py"`
	P2     float64 `json:"p2"`   // Px^2 + Py^2
	Norm   float64 `json:"norm"` // squared norm times the cell area
	SigmaX float64 `json:"sigma_x"`
	SigmaY float64 `json:"sigma_y"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Expect reduces st to one Snapshot. Positions are measured from the
// global origin. With global set every reduction is a collective, made in
// the same order on every node.
func Expect(grid *lattice.Lattice, st *wave.State, h *hamiltonian.Hamiltonian, global bool) (Snapshot, error) {
	if err := sameLattice(grid, st, h); err != nil {
		return Snapshot{}, err
	}
	norm2, err := st.SquaredNorm(global)
	if err != nil {
		return Snapshot{}, err
	}
	if norm2 == 0 {
		return Snapshot{}, nil
	}

	e, err := TotalEnergy(grid, st, h, nil, norm2, global)
	if err != nil {
		return Snapshot{}, err
	}
	p, err := MeanMomentum(grid, st, norm2, global)
	if err != nil {
		return Snapshot{}, err
	}
	x, err := MeanPosition(grid, st, 0, 0, norm2, global)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Energy: e,
		Px:     p.MeanX,
		Py:     p.MeanY,
		P2:     p.MeanX*p.MeanX + p.MeanY*p.MeanY,
		Norm:   norm2 * grid.CellArea(),
		SigmaX: math.Sqrt(math.Max(x.VarX, 0)),
		SigmaY: math.Sqrt(math.Max(x.VarY, 0)),
		X:      x.MeanX,
		Y:      x.MeanY,
	}, nil
}
