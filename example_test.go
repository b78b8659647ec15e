package lloyd_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/testutil"
)

var points = [][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}}

// ExampleCluster clusters two well separated pairs.
func ExampleCluster() {
	// Pick points 0 and 2 as initial centroids.
	res, err := lloyd.Cluster(points, 2, lloyd.WithRand(testutil.NewScriptedRand(0, 1)))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Assignment)
	fmt.Println(res.Centroids)
	fmt.Println(res.Iterations, res.Converged)
	// Output:
	// [0 0 1 1]
	// [[0 0.5] [10 0.5]]
	// 2 true
}

// ExampleResult_History walks the recorded iterations in order.
func ExampleResult_History() {
	res, err := lloyd.Cluster(points, 2, lloyd.WithRand(testutil.NewScriptedRand(0, 1)))
	if err != nil {
		log.Fatal(err)
	}

	for s := range res.History() {
		fmt.Println(s.Iteration(), s.Assignment(), s.Centroids())
	}
	// Output:
	// 0 [-1 -1 -1 -1] [[0 0] [10 0]]
	// 1 [0 0 1 1] [[0 0] [10 0]]
	// 2 [0 0 1 1] [[0 0.5] [10 0.5]]
}

// ExampleCluster_nonConvergence shows the best-effort result returned at the
// iteration cap.
func ExampleCluster_nonConvergence() {
	res, err := lloyd.Cluster(points, 2,
		lloyd.WithRand(testutil.NewScriptedRand(0, 1)),
		lloyd.WithMaxIterations(1),
	)
	fmt.Println(errors.Is(err, lloyd.ErrNonConvergence), res.Converged, res.Centroids)
	// Output: true false [[0 0.5] [10 0.5]]
}
