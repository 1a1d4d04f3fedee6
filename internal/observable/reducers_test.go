package observable_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/halosim/internal/comm"
	"github.com/san-kum/halosim/internal/compute"
	"github.com/san-kum/halosim/internal/hamiltonian"
	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/observable"
	"github.com/san-kum/halosim/internal/wave"
)

var _ = Describe("Reducers", func() {
	var (
		grid *lattice.Lattice
		st   *wave.State
		ham  *hamiltonian.Hamiltonian
	)

	blob := lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 {
		dx, dy := float64(x)-20, float64(y)-12
		return complex(math.Exp(-(dx*dx+dy*dy)/18), 0.1*math.Sin(0.2*float64(x)))
	})

	BeforeEach(func() {
		var err error
		grid, err = lattice.New(lattice.Config{DimX: 40, DimY: 24, DeltaX: 0.5, DeltaY: 0.5}, comm.Local())
		Expect(err).NotTo(HaveOccurred())

		st, err = wave.New(grid, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		st.InitState(blob)

		ham, err = hamiltonian.New(grid, 1, 2)
		Expect(err).NotTo(HaveOccurred())
		ham.InitializePotential(lattice.EvalFunc(func(x, y int, l *lattice.Lattice) float64 {
			return 0.5 * float64((x-20)*(x-20)+(y-12)*(y-12)) * l.CellArea()
		}))
	})

	Describe("normalisation", func() {
		It("uses the local squared norm when none is given", func() {
			norm2, err := st.SquaredNorm(false)
			Expect(err).NotTo(HaveOccurred())

			implicit, err := observable.TotalEnergy(grid, st, ham, nil, 0, false)
			Expect(err).NotTo(HaveOccurred())
			explicit, err := observable.TotalEnergy(grid, st, ham, nil, norm2, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(implicit).To(Equal(explicit))
		})

		It("is invariant under a global rescaling of the field", func() {
			before, err := observable.TotalEnergy(grid, st, ham, nil, 0, false)
			Expect(err).NotTo(HaveOccurred())

			ham.Coupling = 0
			linear, err := observable.TotalEnergy(grid, st, ham, nil, 0, false)
			Expect(err).NotTo(HaveOccurred())

			for i := range st.Real.Data {
				st.Real.Data[i] *= 3
				st.Imag.Data[i] *= 3
			}
			scaled, err := observable.TotalEnergy(grid, st, ham, nil, 0, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(scaled).To(BeNumerically("~", linear, 1e-10))
			Expect(before).NotTo(BeNumerically("~", linear, 1e-10))
		})
	})

	Describe("energy", func() {
		It("is positive for a bound state in a confining potential", func() {
			e, err := observable.TotalEnergy(grid, st, ham, nil, 0, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(e).To(BeNumerically(">", 0))
		})

		It("has no rotational part when the frequency is zero", func() {
			rot, err := observable.RotationalEnergy(grid, st, ham, 0, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(rot).To(BeZero())
		})

		It("does not depend on the worker count", func() {
			prev := compute.GetBackend()
			DeferCleanup(func() { compute.SetBackend(prev) })

			compute.SetBackend(compute.NewCPUBackendN(1))
			serial, err := observable.TotalEnergy(grid, st, ham, nil, 0, false)
			Expect(err).NotTo(HaveOccurred())

			compute.SetBackend(compute.NewCPUBackendN(6))
			parallel, err := observable.TotalEnergy(grid, st, ham, nil, 0, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(parallel).To(BeNumerically("~", serial, 1e-12))
		})
	})

	Describe("Expect", func() {
		It("reports the norm in physical units and consistent moments", func() {
			snap, err := observable.Expect(grid, st, ham, false)
			Expect(err).NotTo(HaveOccurred())

			norm2, _ := st.SquaredNorm(false)
			Expect(snap.Norm).To(BeNumerically("~", norm2*grid.CellArea(), 1e-12))
			Expect(snap.P2).To(BeNumerically("~", snap.Px*snap.Px+snap.Py*snap.Py, 1e-15))
			Expect(snap.SigmaX).To(BeNumerically(">", 0))
			Expect(snap.SigmaY).To(BeNumerically(">", 0))
		})

		It("returns an empty row for a vanishing field", func() {
			st.InitState(lattice.ComplexEvalFunc(func(x, y int, l *lattice.Lattice) complex128 { return 0 }))
			snap, err := observable.Expect(grid, st, ham, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap).To(Equal(observable.Snapshot{}))
		})
	})

	Describe("lattice checks", func() {
		It("rejects a hamiltonian from another lattice", func() {
			other, err := lattice.New(lattice.Config{DimX: 40, DimY: 24, DeltaX: 0.5, DeltaY: 0.5}, comm.Local())
			Expect(err).NotTo(HaveOccurred())
			foreign, err := hamiltonian.New(other, 1, 0)
			Expect(err).NotTo(HaveOccurred())

			_, err = observable.KineticEnergy(grid, st, foreign, 0, false)
			Expect(err).To(MatchError(observable.ErrLatticeMismatch))
		})
	})
})
