package comm

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Group is a set of in-process nodes that synchronise through a
// generation-counted barrier.
type Group struct {
	size int

	mu         sync.Mutex
	cond       *sync.Cond
	slots      []float64
	arrived    int
	generation uint64
	result     []float64
	err        error
}

func NewGroup(size int) (*Group, error) {
	if size < 1 {
		return nil, ErrGroupSize
	}
	g := &Group{
		size:  size,
		slots: make([]float64, size),
	}
	g.cond = sync.NewCond(&g.mu)
	return g, nil
}

func (g *Group) Size() int { return g.size }

// Node returns the communicator for one rank of the group.
func (g *Group) Node(rank int) Communicator {
	return &node{group: g, rank: rank}
}

// Abort wakes every node blocked in a collective; they and all later
// collectives return err.
func (g *Group) Abort(err error) {
	g.mu.Lock()
	if g.err == nil {
		g.err = err
	}
	g.mu.Unlock()
	g.cond.Broadcast()
}

func (g *Group) gather(rank int, v float64) ([]float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}

	g.slots[rank] = v
	g.arrived++
	gen := g.generation

	if g.arrived == g.size {
		out := make([]float64, g.size)
		copy(out, g.slots)
		g.result = out
		g.arrived = 0
		g.generation++
		g.cond.Broadcast()
	} else {
		for gen == g.generation && g.err == nil {
			g.cond.Wait()
		}
		if gen == g.generation {
			return nil, g.err
		}
	}

	// result is only replaced once every node, including this one, has
	// arrived at the next collective.
	out := make([]float64, g.size)
	copy(out, g.result)
	return out, nil
}

type node struct {
	group *Group
	rank  int
}

func (n *node) Rank() int { return n.rank }
func (n *node) Size() int { return n.group.size }

func (n *node) AllGather(v float64) ([]float64, error) {
	return n.group.gather(n.rank, v)
}

func (n *node) Barrier() error {
	_, err := n.group.gather(n.rank, 0)
	return err
}

// Run starts size nodes, each running fn with its own communicator, and
// waits for all of them. The first error, or cancellation of ctx, aborts
// the group.
func Run(ctx context.Context, size int, fn func(ctx context.Context, c Communicator) error) error {
	g, err := NewGroup(size)
	if err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	// egCtx is done once Wait returns, so this never outlives Run.
	go func() {
		<-egCtx.Done()
		g.Abort(ErrAborted)
	}()
	for rank := 0; rank < size; rank++ {
		c := g.Node(rank)
		eg.Go(func() error {
			if err := fn(egCtx, c); err != nil {
				g.Abort(ErrAborted)
				return err
			}
			return nil
		})
	}
	return eg.Wait()
}
