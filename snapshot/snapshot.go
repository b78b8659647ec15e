package snapshot

import (
	"iter"
)

// Snapshot is an immutable capture of (assignment, centroids) at one
// iteration. Accessors return copies.
type Snapshot struct {
	iteration  int
	assignment []int
	centroids  [][]float64
}

// New builds a Snapshot from deep copies of assignment and centroids.
func New(iteration int, assignment []int, centroids [][]float64) Snapshot {
	return Snapshot{
		iteration:  iteration,
		assignment: cloneInts(assignment),
		centroids:  cloneMatrix(centroids),
	}
}

// Iteration returns the iteration the snapshot was taken at. Iteration 0
// is the initial centroid set before any assignment.
func (s Snapshot) Iteration() int { return s.iteration }

// K returns the number of centroids.
func (s Snapshot) K() int { return len(s.centroids) }

// Len returns the number of points covered by the assignment vector.
func (s Snapshot) Len() int { return len(s.assignment) }

// Label returns the cluster of point i without copying the vector.
func (s Snapshot) Label(i int) int { return s.assignment[i] }

// Centroid returns a copy of centroid c.
func (s Snapshot) Centroid(c int) []float64 {
	return cloneFloats(s.centroids[c])
}

// Assignment returns a copy of the assignment vector.
func (s Snapshot) Assignment() []int { return cloneInts(s.assignment) }

// Centroids returns a copy of the centroid set.
func (s Snapshot) Centroids() [][]float64 { return cloneMatrix(s.centroids) }

// Recorder is an append-only history of snapshots.
// It is not safe for concurrent use.
type Recorder struct {
	snaps []Snapshot
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends an independent copy of (assignment, centroids). The
// iteration number is the snapshot's position in the history.
func (r *Recorder) Record(assignment []int, centroids [][]float64) {
	r.snaps = append(r.snaps, New(len(r.snaps), assignment, centroids))
}

// RecordAt appends an independent copy tagged with an explicit iteration.
func (r *Recorder) RecordAt(iteration int, assignment []int, centroids [][]float64) {
	r.snaps = append(r.snaps, New(iteration, assignment, centroids))
}

// Len returns the number of recorded snapshots.
func (r *Recorder) Len() int { return len(r.snaps) }

// At returns the i-th snapshot.
func (r *Recorder) At(i int) Snapshot { return r.snaps[i] }

// History returns the recorded snapshots in order. Every range over the
// returned sequence starts again from the first snapshot. Snapshots
// recorded after History was called are not included.
func (r *Recorder) History() iter.Seq[Snapshot] {
	snaps := r.snaps[:len(r.snaps):len(r.snaps)]
	return func(yield func(Snapshot) bool) {
		for _, s := range snaps {
			if !yield(s) {
				return
			}
		}
	}
}

func cloneInts(src []int) []int {
	if src == nil {
		return nil
	}
	dst := make([]int, len(src))
	copy(dst, src)
	return dst
}

func cloneFloats(src []float64) []float64 {
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}

func cloneMatrix(src [][]float64) [][]float64 {
	if src == nil {
		return nil
	}
	dim := 0
	if len(src) > 0 {
		dim = len(src[0])
	}
	data := make([]float64, 0, len(src)*dim)
	dst := make([][]float64, len(src))
	for i, row := range src {
		start := len(data)
		data = append(data, row...)
		dst[i] = data[start:len(data):len(data)]
	}
	return dst
}
