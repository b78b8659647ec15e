package kmeans

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lloyd/distance"
)

// Unassigned marks a point that has not been through an assignment step yet.
const Unassigned = -1

var (
	// ErrInvalidK is returned when k is not in [1, n].
	ErrInvalidK = errors.New("k must be in [1, n]")

	// ErrEmptyDataset is returned when there are no points to cluster.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrInvalidAssignment is returned when an assignment vector does not
	// match the dataset or references a cluster outside [0, k).
	ErrInvalidAssignment = errors.New("invalid assignment")
)

// Rand is the randomness source used by Initialize.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Validate checks that points is non-empty and that all points share the
// dimensionality of the first one. It returns that dimensionality.
func Validate(points [][]float64) (int, error) {
	if len(points) == 0 {
		return 0, ErrEmptyDataset
	}
	dim := len(points[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: points have no coordinates", ErrEmptyDataset)
	}
	for _, p := range points[1:] {
		if len(p) != dim {
			return 0, &distance.ErrDimensionMismatch{Expected: dim, Actual: len(p)}
		}
	}
	return dim, nil
}

// Initialize selects k distinct points uniformly at random without
// replacement and returns copies of them as the initial centroids.
func Initialize(rng Rand, points [][]float64, k int) ([][]float64, error) {
	n := len(points)
	if k <= 0 || k > n {
		return nil, fmt.Errorf("%w: k=%d, n=%d", ErrInvalidK, k, n)
	}

	// Partial Fisher-Yates: only the first k slots are shuffled.
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		perm[i], perm[j] = perm[j], perm[i]
		centroids[i] = clone(points[perm[i]])
	}

	return centroids, nil
}

// Assign labels every point with the index of its nearest centroid. Ties go
// to the lowest centroid index.
//
// With workers > 1 the points are split into contiguous ranges that are
// labelled concurrently; the result is identical to the sequential one.
func Assign(points, centroids [][]float64, workers int) ([]int, error) {
	if len(centroids) == 0 {
		return nil, fmt.Errorf("%w: no centroids", ErrInvalidK)
	}
	dim, err := Validate(points)
	if err != nil {
		return nil, err
	}
	for _, c := range centroids {
		if len(c) != dim {
			return nil, &distance.ErrDimensionMismatch{Expected: dim, Actual: len(c)}
		}
	}

	n := len(points)
	assignment := make([]int, n)

	if workers <= 1 || n < 2*workers {
		assignRange(points, centroids, assignment, 0, n)
		return assignment, nil
	}

	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			assignRange(points, centroids, assignment, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assignment, nil
}

func assignRange(points, centroids [][]float64, assignment []int, start, end int) {
	for i := start; i < end; i++ {
		assignment[i] = Nearest(points[i], centroids)
	}
}

// Nearest returns the index of the centroid closest to p.
func Nearest(p []float64, centroids [][]float64) int {
	best := 0
	minDist := math.Inf(1)
	for j, c := range centroids {
		if d := distance.SquaredL2(p, c); d < minDist {
			minDist = d
			best = j
		}
	}
	return best
}

// Update recomputes each centroid as the mean of the points assigned to it.
//
// k is taken from len(previous). A cluster without points keeps its previous
// centroid, so the result always has exactly k entries.
func Update(points [][]float64, assignment []int, previous [][]float64) ([][]float64, error) {
	if len(assignment) != len(points) {
		return nil, fmt.Errorf("%w: %d labels for %d points", ErrInvalidAssignment, len(assignment), len(points))
	}
	k := len(previous)
	if k == 0 {
		return nil, fmt.Errorf("%w: no centroids", ErrInvalidK)
	}
	dim := len(previous[0])

	sums := make([]float64, k*dim)
	counts := make([]int, k)

	for i, p := range points {
		c := assignment[i]
		if c < 0 || c >= k {
			return nil, fmt.Errorf("%w: point %d has cluster %d, k=%d", ErrInvalidAssignment, i, c, k)
		}
		if len(p) != dim {
			return nil, &distance.ErrDimensionMismatch{Expected: dim, Actual: len(p)}
		}
		row := sums[c*dim : (c+1)*dim]
		for d, v := range p {
			row[d] += v
		}
		counts[c]++
	}

	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			centroids[c] = clone(previous[c])
			continue
		}
		mean := sums[c*dim : (c+1)*dim : (c+1)*dim]
		scale := 1 / float64(counts[c])
		for d := range mean {
			mean[d] *= scale
		}
		centroids[c] = mean
	}

	return centroids, nil
}

// HasConverged reports whether every centroid in current lies within epsilon
// (Euclidean distance) of its counterpart in previous. An epsilon of zero
// demands exact equality.
func HasConverged(previous, current [][]float64, epsilon float64) bool {
	if len(previous) != len(current) {
		return false
	}
	tol := epsilon * epsilon
	for i := range previous {
		if len(previous[i]) != len(current[i]) {
			return false
		}
		if distance.SquaredL2(previous[i], current[i]) > tol {
			return false
		}
	}
	return true
}

// Inertia returns the within-cluster sum of squared distances. Unassigned
// points are skipped.
func Inertia(points [][]float64, assignment []int, centroids [][]float64) float64 {
	var sum float64
	for i, p := range points {
		c := assignment[i]
		if c < 0 || c >= len(centroids) {
			continue
		}
		sum += distance.SquaredL2(p, centroids[c])
	}
	return sum
}

// Moved counts the labels that differ between two assignment vectors.
func Moved(previous, current []int) int {
	moved := 0
	for i := range current {
		if i >= len(previous) || previous[i] != current[i] {
			moved++
		}
	}
	return moved
}

func clone(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}
