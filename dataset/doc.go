// Package dataset generates and loads point sets for clustering.
//
// Blobs reproduces the isotropic Gaussian blobs used to demonstrate the
// algorithm; LoadCSV and LoadYAML read points from files.
package dataset
