// Package lloyd implements Lloyd's algorithm for k-means clustering and
// records every iteration for later visualization.
//
// # Quick Start
//
//	res, err := lloyd.Cluster(points, 4, lloyd.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Assignment, res.Centroids)
//
// # Snapshots
//
// Each assignment step records an independent copy of the assignment vector
// and the centroids it was computed against. The history is a lazy,
// restartable sequence:
//
//	for s := range res.History() {
//	    draw(s.Iteration(), s.Assignment(), s.Centroids())
//	}
//
// The first snapshot (iteration 0) pairs the initial centroids with an
// all-unassigned vector; disable it with WithoutInitialSnapshot.
//
// # Policies
//
//   - Distance: squared Euclidean.
//   - Ties: a point goes to the lowest-index nearest centroid.
//   - Empty clusters keep their previous centroid.
//   - Convergence: every centroid moved at most epsilon (default 1e-9).
//   - Iteration cap (default 300): the run stops with a best-effort Result
//     and an error matching ErrNonConvergence.
//
// # Stepping
//
// Run exposes the loop as a state machine for tests and tooling:
//
//	run, _ := lloyd.NewRun(points, 4, lloyd.WithSeed(1))
//	for !run.State().Terminal() {
//	    state, err := run.Step()
//	    ...
//	}
//	res, err := run.Result()
package lloyd
