// Package render turns snapshots into raster frames and assembles frames
// into an animated GIF.
//
// Only the first two coordinates of every point are plotted. Points are
// coloured by cluster (grey while unassigned) and centroids are drawn as red
// crosses. All frames of one animation share the same axis bounds.
package render
