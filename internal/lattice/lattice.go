package lattice

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/halosim/internal/comm"
)

const (
	// DefaultHalo is the halo width of a lattice without rotation.
	DefaultHalo = 4
	// RotatingHalo is used when a rotation frequency is configured; the
	// rotational stencil reaches two layers further.
	RotatingHalo = 8
)

type Config struct {
	DimX, DimY     int     // logical grid size
	DeltaX, DeltaY float64 // physical cell spacing
	PeriodicX      bool
	PeriodicY      bool
	Omega          float64 // rotation frequency; widens the halo when non-zero
	Dims           [2]int  // optional node grid {rows, cols}
}

// Lattice is the authoritative description of the distributed grid as seen
// from one node. It is immutable after New and safe to share between any
// number of states and hamiltonians.
type Lattice struct {
	GlobalDimX, GlobalDimY int // logical size plus periodic padding
	HaloX, HaloY           int
	Periods                [2]bool // {y, x}

	X, Y       Borders // this node's ranges along each axis
	DimX, DimY int     // halo-extended tile size

	DeltaX, DeltaY float64
	Omega          float64

	Topology
}

func New(cfg Config, c comm.Communicator) (*Lattice, error) {
	if cfg.DimX < 1 || cfg.DimY < 1 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrTopology, cfg.DimX, cfg.DimY)
	}
	if cfg.DeltaX <= 0 || cfg.DeltaY <= 0 {
		return nil, fmt.Errorf("%w: spacing %gx%g", ErrTopology, cfg.DeltaX, cfg.DeltaY)
	}

	topo, err := NewTopology(c, cfg.Dims)
	if err != nil {
		return nil, err
	}

	halo := DefaultHalo
	if cfg.Omega != 0 {
		halo = RotatingHalo
	}

	l := &Lattice{
		HaloX:    halo,
		HaloY:    halo,
		Periods:  [2]bool{cfg.PeriodicY, cfg.PeriodicX},
		DeltaX:   cfg.DeltaX,
		DeltaY:   cfg.DeltaY,
		Omega:    cfg.Omega,
		Topology: topo,
	}
	l.GlobalDimX = cfg.DimX + 2*l.HaloX*period(cfg.PeriodicX)
	l.GlobalDimY = cfg.DimY + 2*l.HaloY*period(cfg.PeriodicY)

	l.X = CalculateBorders(topo.Coords[1], topo.Dims[1], cfg.DimX, l.HaloX, cfg.PeriodicX)
	l.Y = CalculateBorders(topo.Coords[0], topo.Dims[0], cfg.DimY, l.HaloY, cfg.PeriodicY)
	l.DimX = l.X.Width()
	l.DimY = l.Y.Width()

	return l, nil
}

func period(p bool) int {
	if p {
		return 1
	}
	return 0
}

// Width is the logical (unpadded) number of columns.
func (l *Lattice) Width() int { return l.GlobalDimX - 2*l.HaloX*period(l.Periods[1]) }

// Height is the logical (unpadded) number of rows.
func (l *Lattice) Height() int { return l.GlobalDimY - 2*l.HaloY*period(l.Periods[0]) }

// TileSize is the number of cells in the halo-extended tile.
func (l *Lattice) TileSize() int { return l.DimX * l.DimY }

// CellArea is delta_x * delta_y.
func (l *Lattice) CellArea() float64 { return l.DeltaX * l.DeltaY }

// Index returns the offset of local cell (row, col) in a tile buffer.
func (l *Lattice) Index(row, col int) int { return row*l.DimX + col }

// Fields describes the decomposition for structured logging.
func (l *Lattice) Fields() logrus.Fields {
	return logrus.Fields{
		"rank":    l.Rank,
		"coords":  fmt.Sprintf("%d,%d", l.Coords[0], l.Coords[1]),
		"dims":    fmt.Sprintf("%dx%d", l.Dims[0], l.Dims[1]),
		"tile":    fmt.Sprintf("%dx%d", l.DimX, l.DimY),
		"inner_x": fmt.Sprintf("[%d,%d)", l.X.InnerStart, l.X.InnerEnd),
		"inner_y": fmt.Sprintf("[%d,%d)", l.Y.InnerStart, l.Y.InnerEnd),
		"halo":    l.HaloX,
	}
}
