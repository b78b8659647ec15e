package lloyd

import (
	"fmt"
	"time"

	"github.com/hupe1980/lloyd/internal/kmeans"
	"github.com/hupe1980/lloyd/snapshot"
)

// State is a position in the Lloyd loop state machine.
type State int

const (
	StateUninitialized State = iota
	StateAssigning
	StateUpdating
	StateCheckingConvergence
	StateConverged
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateAssigning:
		return "Assigning"
	case StateUpdating:
		return "Updating"
	case StateCheckingConvergence:
		return "CheckingConvergence"
	case StateConverged:
		return "Converged"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateFailed
}

// Run is a single clustering run. It is driven either to completion with
// Run or one transition at a time with Step. A terminal Run cannot be
// restarted; construct a new one instead.
//
// A Run is not safe for concurrent use.
type Run struct {
	points [][]float64
	dim    int
	k      int
	opts   options
	rng    Rand
	logger *Logger

	state      State
	iteration  int
	assignment []int
	centroids  [][]float64
	next       [][]float64
	moved      int
	converged  bool
	err        error

	iterStart time.Time
	runStart  time.Time

	recorder *snapshot.Recorder
}

// NewRun validates the dataset, k and options and prepares a run. points
// are copied; the caller may reuse them afterwards.
func NewRun(points [][]float64, k int, optFns ...Option) (*Run, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	dim, err := kmeans.Validate(points)
	if err != nil {
		return nil, translateError(err)
	}
	if k <= 0 || k > len(points) {
		return nil, fmt.Errorf("%w: k=%d, n=%d", ErrInvalidK, k, len(points))
	}

	return &Run{
		points:   copyPoints(points, dim),
		dim:      dim,
		k:        k,
		opts:     opts,
		rng:      opts.random(),
		logger:   opts.logger.WithK(k).WithDimension(dim).WithCount(len(points)),
		state:    StateUninitialized,
		recorder: snapshot.NewRecorder(),
	}, nil
}

// State returns the current state.
func (r *Run) State() State { return r.state }

// Iteration returns the number of assignment steps performed so far.
func (r *Run) Iteration() int { return r.iteration }

// Run drives the loop until it converges, hits the iteration cap or fails.
//
// On non-convergence the returned Result holds the last assignment and
// centroids and the error matches ErrNonConvergence.
func (r *Run) Run() (*Result, error) {
	if r.state.Terminal() {
		return nil, ErrRunFinished
	}
	for !r.state.Terminal() {
		if _, err := r.Step(); err != nil {
			return nil, err
		}
	}
	return r.finalResult(), r.err
}

// Result returns the outcome of a terminal run driven with Step. It returns
// nil while the run is still in progress or after it failed.
func (r *Run) Result() (*Result, error) {
	switch r.state {
	case StateConverged:
		return r.finalResult(), r.err
	case StateFailed:
		return nil, r.err
	default:
		return nil, nil
	}
}

// Step performs exactly one state transition and returns the new state.
func (r *Run) Step() (State, error) {
	if r.state.Terminal() {
		return r.state, ErrRunFinished
	}

	var err error
	switch r.state {
	case StateUninitialized:
		err = r.initialize()
	case StateAssigning:
		err = r.assign()
	case StateUpdating:
		err = r.update()
	case StateCheckingConvergence:
		r.checkConvergence()
	}
	if err != nil {
		r.fail(translateError(err))
		return r.state, r.err
	}
	return r.state, nil
}

func (r *Run) initialize() error {
	r.runStart = time.Now()
	r.logger.Info("clustering started",
		"epsilon", r.opts.epsilon,
		"max_iterations", r.opts.maxIterations,
		"workers", r.opts.workers,
	)

	centroids, err := kmeans.Initialize(r.rng, r.points, r.k)
	if err != nil {
		return err
	}
	r.centroids = centroids

	r.assignment = make([]int, len(r.points))
	for i := range r.assignment {
		r.assignment[i] = kmeans.Unassigned
	}
	if r.opts.initialSnapshot {
		r.recorder.RecordAt(0, r.assignment, r.centroids)
	}

	r.state = StateAssigning
	return nil
}

func (r *Run) assign() error {
	r.iterStart = time.Now()

	assignment, err := kmeans.Assign(r.points, r.centroids, r.opts.workers)
	if err != nil {
		return err
	}
	r.iteration++
	r.moved = kmeans.Moved(r.assignment, assignment)
	r.assignment = assignment
	r.recorder.RecordAt(r.iteration, r.assignment, r.centroids)

	r.state = StateUpdating
	return nil
}

func (r *Run) update() error {
	next, err := kmeans.Update(r.points, r.assignment, r.centroids)
	if err != nil {
		return err
	}
	r.next = next

	r.state = StateCheckingConvergence
	return nil
}

func (r *Run) checkConvergence() {
	converged := kmeans.HasConverged(r.centroids, r.next, r.opts.epsilon)
	r.centroids, r.next = r.next, nil

	inertia := kmeans.Inertia(r.points, r.assignment, r.centroids)
	r.opts.metricsCollector.RecordIteration(r.iteration, inertia, r.moved, time.Since(r.iterStart))
	r.logger.LogIteration(r.iteration, inertia, r.moved)

	switch {
	case converged:
		r.converged = true
		r.finish(nil, inertia)
	case r.iteration >= r.opts.maxIterations:
		r.finish(fmt.Errorf("%w: %d iterations without reaching epsilon %g",
			ErrNonConvergence, r.iteration, r.opts.epsilon), inertia)
	default:
		r.state = StateAssigning
	}
}

func (r *Run) finish(err error, inertia float64) {
	r.state = StateConverged
	r.err = err
	r.opts.metricsCollector.RecordRun(r.iteration, r.converged, time.Since(r.runStart), err)
	r.logger.LogRun(r.iteration, inertia, err)
}

func (r *Run) fail(err error) {
	r.state = StateFailed
	r.err = err
	r.opts.metricsCollector.RecordRun(r.iteration, false, time.Since(r.runStart), err)
	r.logger.LogRun(r.iteration, 0, err)
}

func (r *Run) finalResult() *Result {
	if r.centroids == nil {
		return nil
	}
	res := &Result{
		Assignment: append([]int(nil), r.assignment...),
		Centroids:  copyPoints(r.centroids, r.dim),
		Iterations: r.iteration,
		Converged:  r.converged,
		history:    r.recorder,
	}
	if r.iteration > 0 {
		res.Inertia = kmeans.Inertia(r.points, r.assignment, r.centroids)
	}
	return res
}

// Cluster runs Lloyd's algorithm on points with k clusters.
//
// Validation errors (ErrEmptyDataset, ErrInvalidK, *ErrDimensionMismatch,
// ErrInvalidOption) are returned before any iteration runs. When the
// iteration cap is hit the Result is still returned, with Converged set to
// false, alongside an error matching ErrNonConvergence.
func Cluster(points [][]float64, k int, optFns ...Option) (*Result, error) {
	run, err := NewRun(points, k, optFns...)
	if err != nil {
		return nil, err
	}
	return run.Run()
}

func copyPoints(src [][]float64, dim int) [][]float64 {
	data := make([]float64, len(src)*dim)
	dst := make([][]float64, len(src))
	for i, p := range src {
		row := data[i*dim : (i+1)*dim : (i+1)*dim]
		copy(row, p)
		dst[i] = row
	}
	return dst
}
