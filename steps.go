package lloyd

import (
	"github.com/hupe1980/lloyd/distance"
	"github.com/hupe1980/lloyd/internal/kmeans"
)

// Unassigned is the label of a point before its first assignment step.
const Unassigned = kmeans.Unassigned

// Distance returns the squared Euclidean distance between p and q.
func Distance(p, q []float64) (float64, error) {
	d, err := distance.SquaredEuclidean(p, q)
	return d, translateError(err)
}

// Initialize picks k distinct points uniformly at random without
// replacement as initial centroids. The returned centroids are copies.
func Initialize(rng Rand, points [][]float64, k int) ([][]float64, error) {
	if _, err := kmeans.Validate(points); err != nil {
		return nil, translateError(err)
	}
	centroids, err := kmeans.Initialize(rng, points, k)
	return centroids, translateError(err)
}

// Assign labels every point with its nearest centroid, ties going to the
// lowest centroid index.
func Assign(points, centroids [][]float64) ([]int, error) {
	assignment, err := kmeans.Assign(points, centroids, 1)
	return assignment, translateError(err)
}

// Update recomputes centroids as the mean of their assigned points. A
// cluster without points keeps its centroid from previous.
func Update(points [][]float64, assignment []int, previous [][]float64) ([][]float64, error) {
	centroids, err := kmeans.Update(points, assignment, previous)
	return centroids, translateError(err)
}

// HasConverged reports whether every centroid moved at most epsilon.
func HasConverged(previous, current [][]float64, epsilon float64) bool {
	return kmeans.HasConverged(previous, current, epsilon)
}

// Inertia returns the within-cluster sum of squared distances.
func Inertia(points [][]float64, assignment []int, centroids [][]float64) float64 {
	return kmeans.Inertia(points, assignment, centroids)
}
