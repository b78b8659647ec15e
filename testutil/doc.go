// Package testutil provides testing utilities for lloyd.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seedable, thread-safe random source, scripted index
// sequences for driving the initializer deterministically, and generators
// for clustered point sets.
//
// # Random Points
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.ClusteredPoints(300, 2, 4, 0.5)
//
// # Scripted Initialization
//
//	// Intn returns 0, then 1: picks point 0, then point 2 of four.
//	r := testutil.NewScriptedRand(0, 1)
package testutil
