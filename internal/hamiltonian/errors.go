package hamiltonian

import "errors"

var (
	// ErrShortPotential indicates a potential stream with fewer values than
	// the logical grid.
	ErrShortPotential = errors.New("hamiltonian: potential stream too short")

	// ErrRotationHalo indicates a rotating hamiltonian on a lattice whose
	// halo was sized without rotation.
	ErrRotationHalo = errors.New("hamiltonian: rotation needs the rotating halo")
)
