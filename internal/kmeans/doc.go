// Package kmeans implements the individual steps of Lloyd's algorithm.
//
// The steps are pure functions over [][]float64: none of them mutates its
// inputs and every returned slice is freshly allocated. The iteration loop
// that ties them together lives in the root package.
package kmeans
