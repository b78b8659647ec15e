package lloyd

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lloyd/distance"
	"github.com/hupe1980/lloyd/internal/kmeans"
)

var (
	// ErrInvalidK is returned when k is not in [1, n].
	ErrInvalidK = errors.New("invalid k")

	// ErrEmptyDataset is returned when there are no points to cluster.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrInvalidAssignment is returned when an assignment vector does not fit
	// the dataset or the centroid set.
	ErrInvalidAssignment = errors.New("invalid assignment")

	// ErrNonConvergence is returned together with a best-effort Result when
	// the iteration cap is reached before the centroids settle.
	ErrNonConvergence = errors.New("k-means did not converge")

	// ErrInvalidOption is returned by NewRun for out-of-range options.
	ErrInvalidOption = errors.New("invalid option")

	// ErrRunFinished is returned when a terminal Run is driven again.
	ErrRunFinished = errors.New("run already finished")
)

// ErrDimensionMismatch indicates that points of different dimensionality
// were compared.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *distance.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, kmeans.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}
	if errors.Is(err, kmeans.ErrEmptyDataset) {
		return fmt.Errorf("%w: %w", ErrEmptyDataset, err)
	}
	if errors.Is(err, kmeans.ErrInvalidAssignment) {
		return fmt.Errorf("%w: %w", ErrInvalidAssignment, err)
	}

	return err
}
