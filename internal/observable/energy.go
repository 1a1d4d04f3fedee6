package observable

import (
	"math/cmplx"

	"github.com/san-kum/halosim/internal/hamiltonian"
	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/wave"
)

// terms selects the energy contributions accumulated in one pass.
type terms uint8

const (
	kinetic terms = 1 << iota
	potential
	nonlinear
	rotational

	allTerms = kinetic | potential | nonlinear | rotational
)

// energy evaluates the selected terms of <psi|H|psi> over the stencil
// region. pot overrides the hamiltonian's potential buffer when non-nil.
func energy(grid *lattice.Lattice, st *wave.State, h *hamiltonian.Hamiltonian, pot lattice.Evaluable,
	norm2 float64, global bool, sel terms) (float64, error) {
	if err := sameLattice(grid, st, h); err != nil {
		return 0, err
	}
	norm2, err := normalizer(norm2, st)
	if err != nil {
		return 0, err
	}

	costE := complex(-1/(2*h.Mass), 0)
	invDx2 := complex(1/(grid.DeltaX*grid.DeltaX), 0)
	invDy2 := complex(1/(grid.DeltaY*grid.DeltaY), 0)
	costRotX := 0.5 * h.Omega * grid.DeltaY / grid.DeltaX
	costRotY := 0.5 * h.Omega * grid.DeltaX / grid.DeltaY
	halfG := complex(0.5*h.Coupling, 0)
	v := h.Potential.Data

	acc := walk(grid, fieldOf(st), 1, func(c *cell, acc []complex128) {
		psi := c.center
		var hpsi complex128
		if sel&kinetic != 0 {
			hpsi += costE * (invDx2*(c.right+c.left-2*psi) + invDy2*(c.down+c.up-2*psi))
		}
		if sel&potential != 0 {
			var vx float64
			if pot != nil {
				vx = pot.Eval(c.x, c.y, grid)
			} else {
				vx = v[c.k]
			}
			hpsi += psi * complex(vx, 0)
		}
		if sel&nonlinear != 0 {
			hpsi += psi * psi * cmplx.Conj(psi) * halfG
		}
		if sel&rotational != 0 {
			rotX := complex(0, costRotX*(float64(c.y)-h.RotY))
			rotY := complex(0, costRotY*(float64(c.x)-h.RotX))
			hpsi += rotY*(c.down-c.up) - rotX*(c.right-c.left)
		}
		acc[0] += cmplx.Conj(psi) * hpsi
	})

	return reduceGlobal(grid, scale(grid, acc[0], norm2), global)
}

// TotalEnergy is the kinetic, potential, nonlinear and rotational energy
// in a single pass. A nil pot reads the hamiltonian's potential buffer;
// otherwise pot is sampled at global coordinates.
func TotalEnergy(grid *lattice.Lattice, st *wave.State, h *hamiltonian.Hamiltonian, pot lattice.Evaluable, norm2 float64, global bool) (float64, error) {
	return energy(grid, st, h, pot, norm2, global, allTerms)
}

// KineticEnergy uses the second-difference Laplacian scaled by -1/(2m).
func KineticEnergy(grid *lattice.Lattice, st *wave.State, h *hamiltonian.Hamiltonian, norm2 float64, global bool) (float64, error) {
	return energy(grid, st, h, nil, norm2, global, kinetic)
}

func PotentialEnergy(grid *lattice.Lattice, st *wave.State, h *hamiltonian.Hamiltonian, pot lattice.Evaluable, norm2 float64, global bool) (float64, error) {
	return energy(grid, st, h, pot, norm2, global, potential)
}

// NonlinearEnergy is the self-interaction term g/2 |psi|^4.
func NonlinearEnergy(grid *lattice.Lattice, st *wave.State, h *hamiltonian.Hamiltonian, norm2 float64, global bool) (float64, error) {
	return energy(grid, st, h, nil, norm2, global, nonlinear)
}

// RotationalEnergy is the angular momentum term about the hamiltonian's
// rotation center, scaled by its rotation frequency.
func RotationalEnergy(grid *lattice.Lattice, st *wave.State, h *hamiltonian.Hamiltonian, norm2 float64, global bool) (float64, error) {
	return energy(grid, st, h, nil, norm2, global, rotational)
}
