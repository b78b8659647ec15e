package lloyd

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/lloyd/snapshot"
)

// Result is the outcome of a clustering run.
type Result struct {
	// Assignment maps point index to cluster index in [0, k).
	Assignment []int
	// Centroids holds exactly k centroids.
	Centroids [][]float64
	// Iterations is the number of assign/update cycles performed,
	// including the one that confirmed convergence.
	Iterations int
	// Converged is false when the iteration cap stopped the run.
	Converged bool
	// Inertia is the within-cluster sum of squared distances.
	Inertia float64

	history *snapshot.Recorder
}

// K returns the number of clusters.
func (r *Result) K() int { return len(r.Centroids) }

// History returns the recorded snapshots in iteration order. The sequence
// is lazy and restartable; every range starts from the first snapshot.
func (r *Result) History() iter.Seq[snapshot.Snapshot] {
	return r.history.History()
}

// Snapshots returns the number of recorded snapshots.
func (r *Result) Snapshots() int { return r.history.Len() }

// Snapshot returns the i-th recorded snapshot.
func (r *Result) Snapshot(i int) snapshot.Snapshot { return r.history.At(i) }

// Sizes returns the number of points in each cluster.
func (r *Result) Sizes() []int {
	sizes := make([]int, len(r.Centroids))
	for _, c := range r.Assignment {
		sizes[c]++
	}
	return sizes
}

// Members returns the indices of the points assigned to cluster c.
func (r *Result) Members(c int) *roaring.Bitmap {
	bm := roaring.New()
	for i, label := range r.Assignment {
		if label == c {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Partition returns one membership bitmap per cluster.
func (r *Result) Partition() []*roaring.Bitmap {
	parts := make([]*roaring.Bitmap, len(r.Centroids))
	for c := range parts {
		parts[c] = roaring.New()
	}
	for i, label := range r.Assignment {
		parts[label].Add(uint32(i))
	}
	return parts
}
