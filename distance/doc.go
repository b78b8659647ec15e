// Package distance provides the dissimilarity measure used by the clustering loop.
//
// Only squared Euclidean distance is supported. The squared form preserves the
// ordering needed for nearest-centroid comparison and avoids a square root per
// comparison; it is not the true Euclidean distance.
//
// # Usage
//
//	d, err := distance.SquaredEuclidean(p, q) // checked
//	d := distance.SquaredL2(p, q)             // unchecked hot path
package distance
