// Package comm provides the communication context shared by every node of a
// partitioned lattice.
//
// A [Communicator] is created once at startup and threaded through the
// lattice constructor; there is no package-level rank or communicator state.
//
//   - [Local]: a single-node context, collectives are identities
//   - [Group]: N in-process nodes, one goroutine per partition
//
// # Collectives
//
// AllGather and Barrier block until every node of the group has made the
// same call. All participants must call them in lock-step, in the same
// order and the same number of times, or the program deadlocks:
//
//	err := comm.Run(ctx, 4, func(ctx context.Context, c comm.Communicator) error {
//	    total, err := comm.Sum(c, partial)
//	    ...
//	})
package comm
