package lloyd

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lloyd/distance"
	"github.com/hupe1980/lloyd/snapshot"
	"github.com/hupe1980/lloyd/testutil"
)

func square() [][]float64 {
	return [][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}}
}

// picksFirstAndThird makes the initializer choose points 0 and 2 of four.
func picksFirstAndThird() Rand { return testutil.NewScriptedRand(0, 1) }

type inertiaRecorder struct {
	NoopMetricsCollector
	inertia []float64
}

func (r *inertiaRecorder) RecordIteration(_ int, inertia float64, _ int, _ time.Duration) {
	r.inertia = append(r.inertia, inertia)
}

func TestClusterTwoPairs(t *testing.T) {
	res, err := Cluster(square(), 2, WithRand(picksFirstAndThird()))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, []int{0, 0, 1, 1}, res.Assignment)
	require.Len(t, res.Centroids, 2)
	assert.InDeltaSlice(t, []float64{0, 0.5}, res.Centroids[0], 1e-12)
	assert.InDeltaSlice(t, []float64{10, 0.5}, res.Centroids[1], 1e-12)
	// Centroids settle after the first update; the second check confirms it.
	assert.Equal(t, 2, res.Iterations)
	assert.InDelta(t, 1.0, res.Inertia, 1e-12)

	require.Equal(t, 3, res.Snapshots())
	first := res.Snapshot(0)
	assert.Equal(t, 0, first.Iteration())
	assert.Equal(t, []int{Unassigned, Unassigned, Unassigned, Unassigned}, first.Assignment())
	assert.Equal(t, [][]float64{{0, 0}, {10, 0}}, first.Centroids())

	second := res.Snapshot(1)
	assert.Equal(t, 1, second.Iteration())
	assert.Equal(t, []int{0, 0, 1, 1}, second.Assignment())
	assert.Equal(t, [][]float64{{0, 0}, {10, 0}}, second.Centroids())

	third := res.Snapshot(2)
	assert.Equal(t, [][]float64{{0, 0.5}, {10, 0.5}}, third.Centroids())
}

func TestClusterKEqualsN(t *testing.T) {
	points := square()
	res, err := Cluster(points, len(points), WithSeed(7))
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 0.0, res.Inertia)
	assert.Equal(t, []int{1, 1, 1, 1}, res.Sizes())
	for i, c := range res.Assignment {
		assert.Equal(t, points[i], res.Centroids[c])
	}
}

func TestClusterEmptyClusterKeepsCentroid(t *testing.T) {
	points := [][]float64{{0, 0}, {0, 0}, {5, 5}}

	// Both initial centroids are (0,0): every tie goes to cluster 0 and
	// cluster 1 starts out empty.
	res, err := Cluster(points, 2, WithRand(testutil.NewScriptedRand(0, 0)))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0}, res.Snapshot(1).Assignment())
	assert.Equal(t, []float64{0, 0}, res.Snapshot(2).Centroid(1))

	assert.True(t, res.Converged)
	assert.Equal(t, []int{1, 1, 0}, res.Assignment)
	assert.Equal(t, [][]float64{{5, 5}, {0, 0}}, res.Centroids)
	assert.Equal(t, 3, res.Iterations)
}

func TestClusterValidation(t *testing.T) {
	t.Run("InvalidK", func(t *testing.T) {
		for _, k := range []int{-3, 0, 5} {
			metrics := &BasicMetricsCollector{}
			res, err := Cluster(square(), k, WithSeed(1), WithMetricsCollector(metrics))
			assert.ErrorIs(t, err, ErrInvalidK, "k=%d", k)
			assert.Nil(t, res)
			assert.Zero(t, metrics.GetStats().IterationCount)
		}
	})

	t.Run("EmptyDataset", func(t *testing.T) {
		_, err := Cluster(nil, 1)
		assert.ErrorIs(t, err, ErrEmptyDataset)

		_, err = Cluster([][]float64{{}}, 1)
		assert.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := Cluster([][]float64{{0, 0}, {1, 1, 1}}, 1)

		var dm *ErrDimensionMismatch
		require.True(t, errors.As(err, &dm))
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)

		var cause *distance.ErrDimensionMismatch
		assert.True(t, errors.As(err, &cause))
	})

	t.Run("InvalidOption", func(t *testing.T) {
		for name, opt := range map[string]Option{
			"NegativeEpsilon": WithEpsilon(-1),
			"ZeroIterations":  WithMaxIterations(0),
			"ZeroWorkers":     WithWorkers(0),
		} {
			_, err := Cluster(square(), 2, opt)
			assert.ErrorIs(t, err, ErrInvalidOption, name)
		}
	})
}

func TestClusterNonConvergence(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	res, err := Cluster(square(), 2,
		WithRand(picksFirstAndThird()),
		WithMaxIterations(1),
		WithMetricsCollector(metrics),
	)

	require.ErrorIs(t, err, ErrNonConvergence)
	require.NotNil(t, res)
	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, []int{0, 0, 1, 1}, res.Assignment)
	assert.Equal(t, [][]float64{{0, 0.5}, {10, 0.5}}, res.Centroids)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(0), stats.RunConverged)
	assert.Equal(t, int64(1), stats.RunErrors)
}

func TestClusterDeterminism(t *testing.T) {
	points := testutil.NewRNG(42).ClusteredPoints(500, 3, 5, 1.5)

	a, err := Cluster(points, 5, WithSeed(1234))
	require.NoError(t, err)
	b, err := Cluster(points, 5, WithSeed(1234))
	require.NoError(t, err)
	c, err := Cluster(points, 5, WithSeed(1234), WithWorkers(4))
	require.NoError(t, err)

	for _, other := range []*Result{b, c} {
		assert.Equal(t, a.Assignment, other.Assignment)
		assert.Equal(t, a.Centroids, other.Centroids)
		assert.Equal(t, a.Iterations, other.Iterations)
		assert.Equal(t, historyOf(a), historyOf(other))
	}
}

type frame struct {
	Iteration  int
	Assignment []int
	Centroids  [][]float64
}

func historyOf(res *Result) []frame {
	var out []frame
	for s := range res.History() {
		out = append(out, frame{s.Iteration(), s.Assignment(), s.Centroids()})
	}
	return out
}

func TestClusterProperties(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		points := testutil.NewRNG(seed).ClusteredPoints(300, 2, 4, 1.0)
		recorder := &inertiaRecorder{}

		res, err := Cluster(points, 4, WithSeed(seed), WithMetricsCollector(recorder))
		require.NoError(t, err)

		// Inertia never increases between iterations.
		for i := 1; i < len(recorder.inertia); i++ {
			assert.LessOrEqual(t, recorder.inertia[i], recorder.inertia[i-1]+1e-9,
				"seed=%d iteration=%d", seed, i+1)
		}

		// Every recorded assignment after iteration 0 is in range.
		for s := range res.History() {
			if s.Iteration() == 0 {
				continue
			}
			for i := range s.Len() {
				label := s.Label(i)
				assert.GreaterOrEqual(t, label, 0)
				assert.Less(t, label, 4)
			}
			assert.Equal(t, 4, s.K())
		}

		// Converged centroids are a fixed point of assign + update.
		assignment, err := Assign(points, res.Centroids)
		require.NoError(t, err)
		again, err := Update(points, assignment, res.Centroids)
		require.NoError(t, err)
		assert.True(t, HasConverged(res.Centroids, again, DefaultEpsilon))
	}
}

func TestClusterDoesNotAliasInput(t *testing.T) {
	points := square()
	res, err := Cluster(points, 2, WithRand(picksFirstAndThird()))
	require.NoError(t, err)

	points[0][0] = 99
	res.Assignment[0] = 1
	res.Centroids[0][0] = -5

	assert.Equal(t, []int{0, 0, 1, 1}, res.Snapshot(1).Assignment())
	assert.Equal(t, [][]float64{{0, 0.5}, {10, 0.5}}, res.Snapshot(2).Centroids())
}

func TestWithoutInitialSnapshot(t *testing.T) {
	res, err := Cluster(square(), 2, WithRand(picksFirstAndThird()), WithoutInitialSnapshot())
	require.NoError(t, err)

	assert.Equal(t, res.Iterations, res.Snapshots())
	var its []int
	for s := range res.History() {
		its = append(its, s.Iteration())
	}
	assert.Equal(t, []int{1, 2}, its)
}

func TestRunStateMachine(t *testing.T) {
	run, err := NewRun(square(), 2, WithRand(picksFirstAndThird()))
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, run.State())

	res, err := run.Result()
	assert.NoError(t, err)
	assert.Nil(t, res)

	want := []State{
		StateAssigning,
		StateUpdating,
		StateCheckingConvergence,
		StateAssigning,
		StateUpdating,
		StateCheckingConvergence,
		StateConverged,
	}
	var got []State
	for !run.State().Terminal() {
		state, err := run.Step()
		require.NoError(t, err)
		got = append(got, state)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 2, run.Iteration())

	res, err = run.Result()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1}, res.Assignment)

	_, err = run.Step()
	assert.ErrorIs(t, err, ErrRunFinished)
	_, err = run.Run()
	assert.ErrorIs(t, err, ErrRunFinished)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Uninitialized", StateUninitialized.String())
	assert.Equal(t, "CheckingConvergence", StateCheckingConvergence.String())
	assert.Equal(t, "Converged", StateConverged.String())
	assert.Equal(t, "Unknown(42)", State(42).String())
	assert.False(t, StateAssigning.Terminal())
	assert.True(t, StateFailed.Terminal())
}

func TestResultMembership(t *testing.T) {
	res, err := Cluster(square(), 2, WithRand(picksFirstAndThird()))
	require.NoError(t, err)

	assert.Equal(t, 2, res.K())
	assert.Equal(t, []int{2, 2}, res.Sizes())
	assert.Equal(t, []uint32{0, 1}, res.Members(0).ToArray())
	assert.Equal(t, []uint32{2, 3}, res.Members(1).ToArray())
	assert.True(t, res.Members(5).IsEmpty())

	parts := res.Partition()
	require.Len(t, parts, 2)
	assert.Equal(t, uint64(2), parts[1].GetCardinality())
	assert.True(t, parts[0].Contains(1))
}

func TestStepWrappers(t *testing.T) {
	d, err := Distance([]float64{0, 0}, []float64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, 25.0, d)

	_, err = Distance([]float64{0}, []float64{0, 0})
	var dm *ErrDimensionMismatch
	assert.True(t, errors.As(err, &dm))

	_, err = Initialize(testutil.NewScriptedRand(), square(), 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = Initialize(testutil.NewScriptedRand(), nil, 1)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = Update(square(), []int{0, 0, 3, 1}, [][]float64{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, ErrInvalidAssignment)

	assert.InDelta(t, 1.0, Inertia(square(), []int{0, 0, 1, 1}, [][]float64{{0, 0.5}, {10, 0.5}}), 1e-12)
}

func TestLoggingAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &BasicMetricsCollector{}

	_, err := Cluster(square(), 2,
		WithRand(picksFirstAndThird()),
		WithLogger(logger),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"clustering started"`)
	assert.Contains(t, out, `"msg":"iteration completed"`)
	assert.Contains(t, out, `"msg":"clustering converged"`)
	assert.Contains(t, out, `"k":2`)
	assert.Contains(t, out, `"dimension":2`)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.IterationCount)
	assert.Equal(t, int64(4), stats.PointsMoved)
	assert.InDelta(t, 1.0, stats.LastInertia, 1e-12)
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(1), stats.RunConverged)
	assert.Zero(t, stats.RunErrors)
}

func TestHistoryIsSnapshotSequence(t *testing.T) {
	res, err := Cluster(square(), 2, WithRand(picksFirstAndThird()))
	require.NoError(t, err)

	var seq []snapshot.Snapshot
	for s := range res.History() {
		seq = append(seq, s)
	}
	require.Len(t, seq, res.Snapshots())
	for i, s := range seq {
		assert.Equal(t, i, s.Iteration())
	}
}
