package experiment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/halosim/internal/config"
	"github.com/san-kum/halosim/internal/hamiltonian"
	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/metrics"
	"github.com/san-kum/halosim/internal/observable"
	"github.com/san-kum/halosim/internal/storage"
	"github.com/san-kum/halosim/internal/wave"
)

// Stats reads the snapshots of component 1 at iterations 0, I, 2I, ...,
// S*I from dir, where I is cfg.Iterations and S is cfg.Snapshots, and
// returns one expectation row per snapshot with the statistics of energy
// and momentum. The table is also written to dir.
func Stats(dir string, cfg *config.Config, registry *Registry) ([]storage.ExpectRow, metrics.Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, metrics.Summary{}, err
	}

	lc := cfg.Lattice()
	lc.Dims = [2]int{}
	l, err := lattice.New(lc, nil)
	if err != nil {
		return nil, metrics.Summary{}, err
	}

	sp := cfg.Species[0]
	e := &Experiment{cfg: cfg, registry: registry}
	h, err := e.hamiltonian(l, sp)
	if err != nil {
		return nil, metrics.Summary{}, err
	}

	energy, px, py := metrics.NewSample("energy"), metrics.NewSample("px"), metrics.NewSample("py")
	rows := make([]storage.ExpectRow, 0, cfg.Snapshots+1)
	before := 0.0
	for i := 0; i <= cfg.Snapshots; i++ {
		iter := i * cfg.Iterations
		snap, err := expectFile(filepath.Join(dir, storage.ComplexName(1, iter)), l, h)
		if err != nil {
			return nil, metrics.Summary{}, err
		}

		rows = append(rows, storage.ExpectRow{
			Iteration: iter,
			Time:      float64(iter) * cfg.DeltaT,
			DeltaE:    before - snap.Energy,
			Snapshot:  snap,
		})
		before = snap.Energy

		energy.Observe(snap.Energy)
		px.Observe(snap.Px)
		py.Observe(snap.Py)
	}

	name := storage.ExpectTableName(cfg.Grid.Width, cfg.Iterations, cfg.Snapshots)
	if err := storage.SaveExpectTable(filepath.Join(dir, name), rows); err != nil {
		return nil, metrics.Summary{}, err
	}
	return rows, metrics.Summarize(energy, px, py), nil
}

func expectFile(path string, l *lattice.Lattice, h *hamiltonian.Hamiltonian) (observable.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return observable.Snapshot{}, err
	}
	defer f.Close()

	st, err := wave.New(l, nil, nil)
	if err != nil {
		return observable.Snapshot{}, err
	}
	if err := st.ReadState(f, 0); err != nil {
		return observable.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return observable.Expect(l, st, h, false)
}
