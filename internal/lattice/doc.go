// Package lattice describes how a 2D grid is decomposed across cooperating
// nodes.
//
// Each node holds a tile: the region it owns (the inner region) extended by
// a halo of cells mirrored from neighbouring or periodic-image tiles, so
// that 5-point stencils never read across a partition boundary.
//
//   - [CalculateBorders]: owned and halo-extended ranges along one axis
//   - [DimsCreate]: near-square 2D node grid for a node count
//   - [Lattice]: the immutable, shared description of the distributed grid
//   - [Buffer]: a tile-sized real buffer, owned or borrowed
//
// Axis 0 of node coordinates is y (rows), axis 1 is x (columns).
package lattice
