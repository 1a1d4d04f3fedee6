// Package compute runs the row loops of the reducers.
//
// A backend splits a row range into contiguous chunks, hands each chunk a
// private accumulator and folds the accumulators together in chunk order:
//
//	acc := compute.GetBackend().Reduce(rows, 2, func(lo, hi int, acc []complex128) {
//		for r := lo; r < hi; r++ {
//			acc[0] += ...
//		}
//	})
//
// For a fixed worker count the result is bit-for-bit reproducible.
package compute
