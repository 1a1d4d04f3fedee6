package hamiltonian

import (
	"fmt"
	"io"

	"github.com/san-kum/halosim/internal/lattice"
)

// TwoComponent couples two species on the same tile. The embedded
// Hamiltonian is species A.
type TwoComponent struct {
	*Hamiltonian

	MassB     float64
	CouplingB float64

	// Rabi coupling amplitude OmegaR + i*OmegaI.
	OmegaR, OmegaI float64

	PotentialB lattice.Buffer
}

// TwoOption configures the second species.
type TwoOption func(*TwoComponent) error

func WithRabi(omegaR, omegaI float64) TwoOption {
	return func(t *TwoComponent) error {
		t.OmegaR, t.OmegaI = omegaR, omegaI
		return nil
	}
}

// WithPotentialB borrows data as the potential of species B.
func WithPotentialB(data []float64) TwoOption {
	return func(t *TwoComponent) error {
		b, err := t.grid.Borrow(data)
		if err != nil {
			return fmt.Errorf("potential b: %w", err)
		}
		t.PotentialB = b
		return nil
	}
}

// NewTwoComponent builds species A from a, which carries the shared
// rotation parameters and the inter-species coupling, and species B from
// massB and couplingB.
func NewTwoComponent(a *Hamiltonian, massB, couplingB float64, opts ...TwoOption) (*TwoComponent, error) {
	if massB <= 0 {
		return nil, fmt.Errorf("hamiltonian: mass of species b must be positive, got %g", massB)
	}

	t := &TwoComponent{
		Hamiltonian: a,
		MassB:       massB,
		CouplingB:   couplingB,
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	if t.PotentialB.Data == nil {
		t.PotentialB = a.grid.NewBuffer()
	}
	return t, nil
}

func (t *TwoComponent) InitializePotentialB(f lattice.Evaluable) {
	sample(t.grid, t.PotentialB.Data, f)
}

func (t *TwoComponent) ReadPotentialB(r io.Reader) error {
	return read(t.grid, t.PotentialB.Data, r)
}

// Species returns a single-species view of component i (0 or 1). The views
// share potential memory with t and carry the rotation parameters of A.
func (t *TwoComponent) Species(i int) *Hamiltonian {
	if i == 0 {
		return t.Hamiltonian
	}
	b := *t.Hamiltonian
	b.Mass = t.MassB
	b.Coupling = t.CouplingB
	b.Potential = lattice.Buffer{Data: t.PotentialB.Data, Own: lattice.Borrowed}
	return &b
}
