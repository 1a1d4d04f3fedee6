// Package observable reduces states to physical expectation values.
//
// Every reducer walks the stencil region of its lattice, the owned cells
// minus any edge that has no halo beyond it, so the 5-point neighbours of
// each visited cell are always inside the tile. Sums are normalised by the
// squared norm passed in, or by the local squared norm when it is 0, and
// scaled by the cell area.
//
// With global set a reducer is a collective: every node of the lattice
// must make the same sequence of global calls, and each returns the sum of
// all per-node partials.
package observable
