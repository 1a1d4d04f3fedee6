package lattice

import "errors"

var (
	// ErrTopology indicates the node count cannot form the requested
	// decomposition, or the grid geometry is unusable.
	ErrTopology = errors.New("lattice: invalid topology")

	// ErrSizeMismatch indicates a buffer whose length does not match the
	// tile of the lattice it is attached to.
	ErrSizeMismatch = errors.New("lattice: buffer size does not match tile")
)
