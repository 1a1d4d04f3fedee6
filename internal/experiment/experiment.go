package experiment

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/halosim/internal/comm"
	"github.com/san-kum/halosim/internal/config"
	"github.com/san-kum/halosim/internal/hamiltonian"
	"github.com/san-kum/halosim/internal/lattice"
	"github.com/san-kum/halosim/internal/logging"
	"github.com/san-kum/halosim/internal/observable"
	"github.com/san-kum/halosim/internal/storage"
	"github.com/san-kum/halosim/internal/wave"
)

// ConfigFile is the copy of the run configuration kept in every run
// directory, read back by Stats.
const ConfigFile = "config.yaml"

// Result is what rank 0 reports after a run.
type Result struct {
	RunID string
	Dir   string
	Dims  [2]int

	// Snapshots holds one expectation row per species.
	Snapshots []observable.Snapshot
	// Energy is the total energy, including the coupling terms of a
	// two-species run.
	Energy float64
}

type Experiment struct {
	cfg      *config.Config
	preset   string
	registry *Registry
	store    *storage.Store
	log      *logrus.Logger
}

func New(cfg *config.Config, preset string, registry *Registry, store *storage.Store, log *logrus.Logger) *Experiment {
	return &Experiment{
		cfg:      cfg,
		preset:   preset,
		registry: registry,
		store:    store,
		log:      log,
	}
}

// Run builds the lattice on cfg.Nodes in-process nodes, prepares every
// species, reduces the observables and stamps the initial snapshot into a
// new run directory.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := e.store.Init(); err != nil {
		return nil, err
	}

	prefix := e.preset
	if prefix == "" {
		prefix = "run"
	}
	runID, err := e.store.Create(prefix)
	if err != nil {
		return nil, err
	}
	dir := e.store.Dir(runID)
	if err := config.Save(filepath.Join(dir, ConfigFile), e.cfg); err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		res = &Result{RunID: runID, Dir: dir}
	)
	start := time.Now()
	err = comm.Run(ctx, e.cfg.Nodes, func(ctx context.Context, c comm.Communicator) error {
		r, err := e.node(ctx, c, dir)
		if err != nil {
			return fmt.Errorf("rank %d: %w", c.Rank(), err)
		}
		if c.Rank() == 0 {
			mu.Lock()
			res.Dims, res.Snapshots, res.Energy = r.Dims, r.Snapshots, r.Energy
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"run":     runID,
		"nodes":   e.cfg.Nodes,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("run complete")

	meta := storage.RunMetadata{
		ID:        runID,
		Preset:    e.preset,
		Timestamp: time.Now(),
		Nodes:     e.cfg.Nodes,
		NodeGrid:  res.Dims,
		Width:     e.cfg.Grid.Width,
		Height:    e.cfg.Grid.Height,
		DeltaX:    e.cfg.Grid.DeltaX,
		DeltaY:    e.cfg.Grid.DeltaY,
		Periodic:  [2]bool{e.cfg.Grid.PeriodicX, e.cfg.Grid.PeriodicY},
		Species:   len(e.cfg.Species),
		Observables: map[string]float64{
			"energy": res.Energy,
		},
	}
	for i, s := range res.Snapshots {
		meta.Observables[fmt.Sprintf("norm_%d", i+1)] = s.Norm
		meta.Observables[fmt.Sprintf("energy_%d", i+1)] = s.Energy
	}
	if err := e.store.SaveMetadata(meta); err != nil {
		return nil, err
	}
	return res, nil
}

// node is the body run by every partition. Every node performs the same
// sequence of collectives.
func (e *Experiment) node(ctx context.Context, c comm.Communicator, dir string) (*Result, error) {
	cfg := e.cfg
	l, err := lattice.New(cfg.Lattice(), c)
	if err != nil {
		return nil, err
	}
	log := logging.Node(e.log, c.Rank()).WithFields(l.Fields())
	log.Debug("lattice ready")

	states := make([]*wave.State, len(cfg.Species))
	for i, sp := range cfg.Species {
		if states[i], err = e.initialState(l, sp); err != nil {
			return nil, fmt.Errorf("species %d: %w", i+1, err)
		}
	}

	h, err := e.hamiltonian(l, cfg.Species[0])
	if err != nil {
		return nil, err
	}
	var two *hamiltonian.TwoComponent
	if cfg.TwoComponent() {
		sb := cfg.Species[1]
		two, err = hamiltonian.NewTwoComponent(h, sb.Mass, sb.Coupling, hamiltonian.WithRabi(cfg.Rabi.Real, cfg.Rabi.Imag))
		if err != nil {
			return nil, err
		}
		if err := e.potential(l, sb, two.InitializePotentialB, two.ReadPotentialB); err != nil {
			return nil, fmt.Errorf("species 2: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Dims: l.Dims}
	for i, st := range states {
		species := h
		if two != nil {
			species = two.Species(i)
		}
		snap, err := observable.Expect(l, st, species, true)
		if err != nil {
			return nil, fmt.Errorf("species %d: %w", i+1, err)
		}
		res.Snapshots = append(res.Snapshots, snap)
		res.Energy += snap.Energy
	}

	if two != nil {
		norm2 := 0.0
		for _, st := range states {
			n, err := st.SquaredNorm(true)
			if err != nil {
				return nil, err
			}
			norm2 += n
		}
		if res.Energy, err = observable.TotalEnergyTwoComponent(l, states[0], states[1], two, nil, norm2, true); err != nil {
			return nil, err
		}
	}
	log.WithField("energy", res.Energy).Debug("observables reduced")

	for i, st := range states {
		if err := e.stamp(dir, l, st, i+1); err != nil {
			return nil, err
		}
	}
	return res, c.Barrier()
}

func (e *Experiment) initialState(l *lattice.Lattice, sp config.SpeciesConfig) (*wave.State, error) {
	st, err := wave.New(l, nil, nil)
	if err != nil {
		return nil, err
	}

	if sp.StateFile != "" {
		f, err := os.Open(sp.StateFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return st, st.ReadState(f, sp.StateSkip)
	}

	ini, err := e.registry.GetInitialState(sp.Initial.Name, sp.Initial.Params)
	if err != nil {
		return nil, err
	}
	st.InitState(ini)
	return st, nil
}

func (e *Experiment) hamiltonian(l *lattice.Lattice, sp config.SpeciesConfig) (*hamiltonian.Hamiltonian, error) {
	opts := []hamiltonian.Option{
		hamiltonian.WithRotation(e.cfg.Rotation.Omega),
		hamiltonian.WithCouplingAB(e.cfg.CouplingAB),
	}
	if c := e.cfg.Rotation.Center; len(c) == 2 {
		opts = append(opts, hamiltonian.WithRotationCenter(c[0], c[1]))
	}

	h, err := hamiltonian.New(l, sp.Mass, sp.Coupling, opts...)
	if err != nil {
		return nil, err
	}
	if err := e.potential(l, sp, h.InitializePotential, h.ReadPotential); err != nil {
		return nil, fmt.Errorf("species 1: %w", err)
	}
	return h, nil
}

// potential fills one potential buffer from the species file or strategy.
// A species with neither keeps a zero potential.
func (e *Experiment) potential(l *lattice.Lattice, sp config.SpeciesConfig,
	initialize func(lattice.Evaluable), read func(r io.Reader) error) error {
	if sp.PotentialFile != "" {
		f, err := os.Open(sp.PotentialFile)
		if err != nil {
			return err
		}
		defer f.Close()
		return read(f)
	}
	if sp.Potential.Name == "" {
		return nil
	}

	pot, err := e.registry.GetPotential(sp.Potential.Name, sp.Potential.Params)
	if err != nil {
		return err
	}
	initialize(pot)
	return nil
}

func (e *Experiment) stamp(dir string, l *lattice.Lattice, st *wave.State, component int) error {
	const iteration = 0

	if err := storage.Stamp(dir, st, component, iteration); err != nil {
		return err
	}
	dens, err := st.ParticleDensity(nil)
	if err != nil {
		return err
	}
	if err := storage.StampReal(dir, storage.TagName(iteration, fmt.Sprintf("density_%d", component)), l, dens); err != nil {
		return err
	}
	phase, err := st.Phase(nil)
	if err != nil {
		return err
	}
	return storage.StampReal(dir, storage.TagName(iteration, fmt.Sprintf("phase_%d", component)), l, phase)
}

// Layout builds the lattice every node of cfg would see, indexed by rank.
// No collectives are involved, so the nodes are built in turn.
func Layout(cfg *config.Config) ([]*lattice.Lattice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := comm.NewGroup(cfg.Nodes)
	if err != nil {
		return nil, err
	}

	tiles := make([]*lattice.Lattice, cfg.Nodes)
	for rank := range tiles {
		if tiles[rank], err = lattice.New(cfg.Lattice(), g.Node(rank)); err != nil {
			return nil, err
		}
	}
	return tiles, nil
}
