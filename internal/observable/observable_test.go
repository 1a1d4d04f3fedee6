package observable

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/san-kum/halosim/internal/comm"
	"github.com/san-kum/halosim/internal/hamiltonian"
	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/wave"
)

func setup(t *testing.T, cfg lattice.Config, f lattice.ComplexEvaluable) (*lattice.Lattice, *wave.State) {
	t.Helper()
	l, err := lattice.New(cfg, comm.Local())
	if err != nil {
		t.Fatalf("lattice: %v", err)
	}
	st, err := wave.New(l, nil, nil)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	st.InitState(f)
	return l, st
}

func constant(v complex128) lattice.ComplexEvaluable {
	return lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 { return v })
}

func constPot(v float64) lattice.Evaluable {
	return lattice.EvalFunc(func(x, y int, l *lattice.Lattice) float64 { return v })
}

func gaussian(cx, cy, w float64) lattice.ComplexEvaluable {
	return lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 {
		dx, dy := float64(x)-cx, float64(y)-cy
		return complex(math.Exp(-(dx*dx+dy*dy)/(2*w*w)), 0)
	})
}

func TestTwoComponentComposition(t *testing.T) {
	// Constant fields on a periodic 4x4 grid: the kinetic term vanishes
	// and every cell contributes the same amount.
	cfg := lattice.Config{DimX: 4, DimY: 4, DeltaX: 0.5, DeltaY: 0.5, PeriodicX: true, PeriodicY: true}
	l, a := setup(t, cfg, constant(1))
	b, err := wave.New(l, nil, nil)
	if err != nil {
		t.Fatalf("state b: %v", err)
	}
	b.InitState(constant(complex(0, 0.5)))

	ha, err := hamiltonian.New(l, 1, 1, hamiltonian.WithCouplingAB(0.5))
	if err != nil {
		t.Fatalf("hamiltonian: %v", err)
	}
	h, err := hamiltonian.NewTwoComponent(ha, 2, 2, hamiltonian.WithRabi(0.3, 0.1))
	if err != nil {
		t.Fatalf("two component: %v", err)
	}
	h.InitializePotential(constPot(2))
	h.InitializePotentialB(constPot(3))

	total, err := TotalEnergyTwoComponent(l, a, b, h, nil, 0, false)
	if err != nil {
		t.Fatalf("total: %v", err)
	}

	// norm2 = 16*1 + 16*0.25 = 20, area 0.25
	//   A:    16*(2 + 0.5)            = 40   -> 0.5
	//   B:    16*(0.25*3 + 0.0625*1)  = 13   -> 0.1625
	//   ab:   16*0.25*0.5             = 2    -> 0.025
	//   rabi: 16*2*Re(0.5i*(0.3+0.1i)) = -1.6 -> -0.02
	const want = 0.6675
	if math.Abs(total-want) > 1e-8 {
		t.Errorf("two component energy = %.12f, want %.12f", total, want)
	}

	parts := 0.0
	for i, st := range []*wave.State{a, b} {
		e, err := TotalEnergy(l, st, h.Species(i), nil, 20, false)
		if err != nil {
			t.Fatalf("species %d: %v", i, err)
		}
		parts += e
	}
	ab, _ := AbEnergy(l, a, b, 0.5, 0, false)
	rabi, _ := RabiEnergy(l, a, b, 0.3, 0.1, 0, false)
	if math.Abs(parts+ab+rabi-total) > 1e-12 {
		t.Errorf("pieces %.12f do not add up to %.12f", parts+ab+rabi, total)
	}
	if math.Abs(ab-0.025) > 1e-12 || math.Abs(rabi+0.02) > 1e-12 {
		t.Errorf("ab = %v, rabi = %v", ab, rabi)
	}
}

func TestEnergyTermsAddUp(t *testing.T) {
	cfg := lattice.Config{DimX: 24, DimY: 20, DeltaX: 0.25, DeltaY: 0.4, Omega: 0.7}
	l, st := setup(t, cfg, lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 {
		return gaussian(11, 9, 3).Eval(x, y, l) * cmplx.Exp(complex(0, 0.4*float64(x)-0.2*float64(y)))
	}))
	h, err := hamiltonian.New(l, 1.3, 0.8, hamiltonian.WithRotation(0.7))
	if err != nil {
		t.Fatalf("hamiltonian: %v", err)
	}
	harmonic := lattice.EvalFunc(func(x, y int, l *lattice.Lattice) float64 {
		return 0.01 * float64((x-12)*(x-12)+(y-10)*(y-10))
	})
	h.InitializePotential(harmonic)

	total, err := TotalEnergy(l, st, h, nil, 0, false)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	kin, _ := KineticEnergy(l, st, h, 0, false)
	pot, _ := PotentialEnergy(l, st, h, nil, 0, false)
	nl, _ := NonlinearEnergy(l, st, h, 0, false)
	rot, _ := RotationalEnergy(l, st, h, 0, false)
	if math.Abs(kin+pot+nl+rot-total) > 1e-10 {
		t.Errorf("terms %.12f != total %.12f", kin+pot+nl+rot, total)
	}
	if rot == 0 {
		t.Error("rotational term vanished for a moving field")
	}

	// the callback and the sampled buffer describe the same potential
	viaCallback, err := PotentialEnergy(l, st, h, harmonic, 0, false)
	if err != nil {
		t.Fatalf("potential via callback: %v", err)
	}
	if math.Abs(viaCallback-pot) > 1e-12 {
		t.Errorf("callback potential %.12f != buffer potential %.12f", viaCallback, pot)
	}
}

func TestPlaneWaveMomentum(t *testing.T) {
	const width = 16
	k := 2 * math.Pi / width
	cfg := lattice.Config{DimX: width, DimY: 8, DeltaX: 1, DeltaY: 1, PeriodicX: true, PeriodicY: true}
	l, st := setup(t, cfg, lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 {
		return cmplx.Exp(complex(0, k*float64(x)))
	}))

	p, err := MeanMomentum(l, st, 0, false)
	if err != nil {
		t.Fatalf("momentum: %v", err)
	}
	area := l.CellArea()
	if want := math.Sin(k) * area; math.Abs(p.MeanX-want) > 1e-12 {
		t.Errorf("<px> = %v, want %v", p.MeanX, want)
	}
	if math.Abs(p.MeanY) > 1e-12 || math.Abs(p.VarY) > 1e-12 {
		t.Errorf("py moments = %v, %v, want 0", p.MeanY, p.VarY)
	}

	h, _ := hamiltonian.New(l, 2, 0)
	kin, err := KineticEnergy(l, st, h, 0, false)
	if err != nil {
		t.Fatalf("kinetic: %v", err)
	}
	if want := (1 - math.Cos(k)) / 2; math.Abs(kin-want) > 1e-12 {
		t.Errorf("kinetic = %v, want %v", kin, want)
	}
}

func TestMeanPositionOriginShift(t *testing.T) {
	cfg := lattice.Config{DimX: 32, DimY: 32, DeltaX: 1, DeltaY: 1}
	l, st := setup(t, cfg, gaussian(15.5, 15.5, 3))

	base, err := MeanPosition(l, st, 0, 0, 0, false)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if math.Abs(base.MeanX-15.5) > 1e-9 || math.Abs(base.MeanY-15.5) > 1e-9 {
		t.Errorf("centre = (%v, %v), want (15.5, 15.5)", base.MeanX, base.MeanY)
	}

	for _, origin := range [][2]int{{5, -3}, {-40, 12}, {31, 31}} {
		shifted, err := MeanPosition(l, st, origin[0], origin[1], 0, false)
		if err != nil {
			t.Fatalf("position: %v", err)
		}
		if math.Abs(shifted.VarX-base.VarX) > 1e-9 || math.Abs(shifted.VarY-base.VarY) > 1e-9 {
			t.Errorf("origin %v: variance (%v, %v), base (%v, %v)", origin, shifted.VarX, shifted.VarY, base.VarX, base.VarY)
		}
		if math.Abs(shifted.MeanX-(base.MeanX-float64(origin[0]))) > 1e-9 {
			t.Errorf("origin %v: <x> = %v", origin, shifted.MeanX)
		}
	}

	// momentum moments do not depend on any origin
	p1, _ := MeanMomentum(l, st, 0, false)
	p2, _ := MeanMomentum(l, st, 0, false)
	if p1 != p2 {
		t.Errorf("momentum not reproducible: %+v vs %+v", p1, p2)
	}
}

func TestGlobalReductionMatchesSingleNode(t *testing.T) {
	cfg := lattice.Config{DimX: 30, DimY: 22, DeltaX: 0.5, DeltaY: 0.5, Omega: 0.4}
	field := lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 {
		return gaussian(14, 10, 4).Eval(x, y, l) * cmplx.Exp(complex(0, 0.3*float64(x)))
	})
	pot := lattice.EvalFunc(func(x, y int, l *lattice.Lattice) float64 { return 0.02 * float64(x*x+y*y) })

	reduce := func(l *lattice.Lattice) (Snapshot, float64, error) {
		st, err := wave.New(l, nil, nil)
		if err != nil {
			return Snapshot{}, 0, err
		}
		st.InitState(field)
		h, err := hamiltonian.New(l, 1, 0.5, hamiltonian.WithRotation(0.4))
		if err != nil {
			return Snapshot{}, 0, err
		}
		h.InitializePotential(pot)
		s, err := Expect(l, st, h, true)
		if err != nil {
			return Snapshot{}, 0, err
		}
		rot, err := RotationalEnergy(l, st, h, s.Norm/l.CellArea(), true)
		return s, rot, err
	}

	single, err := lattice.New(cfg, comm.Local())
	if err != nil {
		t.Fatalf("lattice: %v", err)
	}
	want, wantRot, err := reduce(single)
	if err != nil {
		t.Fatalf("single node: %v", err)
	}

	var mu sync.Mutex
	got := map[int]Snapshot{}
	gotRot := map[int]float64{}
	err = comm.Run(context.Background(), 4, func(ctx context.Context, c comm.Communicator) error {
		l, err := lattice.New(cfg, c)
		if err != nil {
			return err
		}
		s, rot, err := reduce(l)
		if err != nil {
			return err
		}
		mu.Lock()
		got[c.Rank()], gotRot[c.Rank()] = s, rot
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("group: %v", err)
	}

	near := func(a, b float64) bool { return math.Abs(a-b) <= 1e-10*math.Max(1, math.Abs(b)) }
	for rank, s := range got {
		if !near(s.Energy, want.Energy) || !near(s.Px, want.Px) || !near(s.Py, want.Py) ||
			!near(s.Norm, want.Norm) || !near(s.X, want.X) || !near(s.SigmaY, want.SigmaY) {
			t.Errorf("rank %d: %+v, single node %+v", rank, s, want)
		}
		if !near(gotRot[rank], wantRot) {
			t.Errorf("rank %d: rotational %v, single node %v", rank, gotRot[rank], wantRot)
		}
	}
}

func TestLatticeMismatch(t *testing.T) {
	cfg := lattice.Config{DimX: 8, DimY: 8, DeltaX: 1, DeltaY: 1}
	l, st := setup(t, cfg, constant(1))
	other, otherSt := setup(t, cfg, constant(1))
	h, _ := hamiltonian.New(other, 1, 0)

	if _, err := TotalEnergy(l, st, h, nil, 0, false); !errors.Is(err, ErrLatticeMismatch) {
		t.Errorf("state/hamiltonian: expected ErrLatticeMismatch, got %v", err)
	}
	if _, err := MeanPosition(other, st, 0, 0, 0, false); !errors.Is(err, ErrLatticeMismatch) {
		t.Errorf("position: expected ErrLatticeMismatch, got %v", err)
	}
	if _, err := AbEnergy(l, st, otherSt, 1, 0, false); !errors.Is(err, ErrLatticeMismatch) {
		t.Errorf("ab: expected ErrLatticeMismatch, got %v", err)
	}
}

func TestEmptyInnerNodeContributesNothing(t *testing.T) {
	// Four columns of nodes over five cells: ceil(5/4) = 2, so rank 3
	// owns [5,5) and its local norm is zero.
	cfg := lattice.Config{DimX: 5, DimY: 4, DeltaX: 1, DeltaY: 1, Dims: [2]int{1, 4}}

	var mu sync.Mutex
	nonlinear := map[int]float64{}
	meanX := map[int]float64{}
	err := comm.Run(context.Background(), 4, func(ctx context.Context, c comm.Communicator) error {
		l, err := lattice.New(cfg, c)
		if err != nil {
			return err
		}
		st, err := wave.New(l, nil, nil)
		if err != nil {
			return err
		}
		st.InitState(constant(1))
		h, err := hamiltonian.New(l, 1, 2)
		if err != nil {
			return err
		}

		e, err := NonlinearEnergy(l, st, h, 0, true)
		if err != nil {
			return err
		}
		m, err := MeanPosition(l, st, 0, 0, 0, true)
		if err != nil {
			return err
		}
		mu.Lock()
		nonlinear[c.Rank()], meanX[c.Rank()] = e, m.MeanX
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("group: %v", err)
	}

	for rank := 0; rank < 4; rank++ {
		if math.IsNaN(nonlinear[rank]) || math.IsNaN(meanX[rank]) {
			t.Errorf("rank %d: nonlinear=%v meanX=%v", rank, nonlinear[rank], meanX[rank])
		}
		if nonlinear[rank] != nonlinear[0] || meanX[rank] != meanX[0] {
			t.Errorf("rank %d disagrees with rank 0", rank)
		}
	}
	if nonlinear[0] <= 0 {
		t.Errorf("nonlinear energy %v, want positive", nonlinear[0])
	}
}
