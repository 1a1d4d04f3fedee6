package lattice

import (
	"fmt"
	"math"

	"github.com/san-kum/halosim/internal/comm"
)

// Topology places one node inside the 2D node grid.
type Topology struct {
	Comm   comm.Communicator
	Procs  int
	Rank   int
	Dims   [2]int // node grid extent, {rows, cols}
	Coords [2]int // this node, {row, col}
}

// DimsCreate factors n into the most nearly square {rows, cols} pair with
// rows >= cols.
func DimsCreate(n int) ([2]int, error) {
	if n < 1 {
		return [2]int{}, fmt.Errorf("%w: %d nodes", ErrTopology, n)
	}
	for f := int(math.Sqrt(float64(n))); f >= 1; f-- {
		if n%f == 0 {
			return [2]int{n / f, f}, nil
		}
	}
	return [2]int{n, 1}, nil
}

// NewTopology derives the node grid for c. A non-zero dims pins the grid
// shape and must multiply to the node count.
func NewTopology(c comm.Communicator, dims [2]int) (Topology, error) {
	if c == nil {
		c = comm.Local()
	}
	n := c.Size()

	if dims == [2]int{} {
		var err error
		if dims, err = DimsCreate(n); err != nil {
			return Topology{}, err
		}
	} else if dims[0] < 1 || dims[1] < 1 || dims[0]*dims[1] != n {
		return Topology{}, fmt.Errorf("%w: %dx%d grid for %d nodes", ErrTopology, dims[0], dims[1], n)
	}

	rank := c.Rank()
	if rank < 0 || rank >= n {
		return Topology{}, fmt.Errorf("%w: rank %d of %d", ErrTopology, rank, n)
	}

	return Topology{
		Comm:   c,
		Procs:  n,
		Rank:   rank,
		Dims:   dims,
		Coords: [2]int{rank / dims[1], rank % dims[1]},
	}, nil
}

// RankOf returns the rank at node-grid coordinates {row, col}.
func (t Topology) RankOf(coords [2]int) int {
	return coords[0]*t.Dims[1] + coords[1]
}
