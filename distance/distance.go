package distance

import "fmt"

// ErrDimensionMismatch is returned when two points of different
// dimensionality are compared.
type ErrDimensionMismatch struct {
	Expected int // Dimensionality of the first operand
	Actual   int // Dimensionality of the second operand
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// SquaredEuclidean returns the squared Euclidean distance between p and q.
func SquaredEuclidean(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, &ErrDimensionMismatch{Expected: len(p), Actual: len(q)}
	}
	return SquaredL2(p, q), nil
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two points.
// Assumes points are the same length (caller's responsibility).
func SquaredL2(p, q []float64) float64 {
	q = q[:len(p)]

	var sum float64
	for i := range p {
		d := p[i] - q[i]
		sum += d * d
	}
	return sum
}
