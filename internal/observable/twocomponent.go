package observable

import (
	"math/cmplx"

	"github.com/san-kum/halosim/internal/hamiltonian"
	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/wave"
)

// AbEnergy is the inter-species density-density interaction
// g_ab |psi_a|^2 |psi_b|^2. A zero norm2 normalises by the sum of both
// local squared norms.
func AbEnergy(grid *lattice.Lattice, a, b *wave.State, couplingAB, norm2 float64, global bool) (float64, error) {
	if err := sameLattice(grid, a, b); err != nil {
		return 0, err
	}
	norm2, err := normalizer(norm2, a, b)
	if err != nil {
		return 0, err
	}

	fb := fieldOf(b)
	g := complex(couplingAB, 0)
	acc := walk(grid, fieldOf(a), 1, func(c *cell, acc []complex128) {
		pa, pb := c.center, fb.at(c.k)
		acc[0] += cmplx.Conj(pa) * pa * cmplx.Conj(pb) * pb * g
	})
	return reduceGlobal(grid, scale(grid, acc[0], norm2), global)
}

// RabiEnergy is the coherent coupling omega psi_a* psi_b + c.c. with
// omega = omegaR + i omegaI.
func RabiEnergy(grid *lattice.Lattice, a, b *wave.State, omegaR, omegaI, norm2 float64, global bool) (float64, error) {
	if err := sameLattice(grid, a, b); err != nil {
		return 0, err
	}
	norm2, err := normalizer(norm2, a, b)
	if err != nil {
		return 0, err
	}

	fb := fieldOf(b)
	omega := complex(omegaR, omegaI)
	acc := walk(grid, fieldOf(a), 1, func(c *cell, acc []complex128) {
		pa, pb := c.center, fb.at(c.k)
		acc[0] += cmplx.Conj(pa)*pb*omega + cmplx.Conj(pb)*pa*cmplx.Conj(omega)
	})
	return reduceGlobal(grid, scale(grid, acc[0], norm2), global)
}

// TotalEnergyTwoComponent adds the single-species energy of each component,
// the inter-species energy and the Rabi energy. The pieces are reduced
// locally and summed across nodes once. pots may be nil, or hold a
// per-species override of the potential buffers.
func TotalEnergyTwoComponent(grid *lattice.Lattice, a, b *wave.State, h *hamiltonian.TwoComponent,
	pots *[2]lattice.Evaluable, norm2 float64, global bool) (float64, error) {
	if err := sameLattice(grid, a, b, h); err != nil {
		return 0, err
	}
	norm2, err := normalizer(norm2, a, b)
	if err != nil {
		return 0, err
	}

	var override [2]lattice.Evaluable
	if pots != nil {
		override = *pots
	}

	sum := 0.0
	for i, st := range []*wave.State{a, b} {
		e, err := TotalEnergy(grid, st, h.Species(i), override[i], norm2, false)
		if err != nil {
			return 0, err
		}
		sum += e
	}

	ab, err := AbEnergy(grid, a, b, h.CouplingAB, norm2, false)
	if err != nil {
		return 0, err
	}
	rabi, err := RabiEnergy(grid, a, b, h.OmegaR, h.OmegaI, norm2, false)
	if err != nil {
		return 0, err
	}

	return reduceGlobal(grid, sum+ab+rabi, global)
}
