// Package snapshot records the state of a clustering run at every iteration.
//
// A Snapshot is an independent deep copy of the assignment vector and the
// centroid set taken at one iteration boundary. Snapshots never share
// storage with the live state of the loop, so later iterations cannot
// change what an earlier frame shows.
//
// History is exposed as an iter.Seq: it is lazy, finite and restartable.
//
//	for s := range rec.History() {
//	    frame := render(s.Assignment(), s.Centroids())
//	}
package snapshot
