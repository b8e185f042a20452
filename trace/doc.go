// Package trace turns raster ink into vector paths.
//
// The [Tracer] interface is what quill's raster overlay hands its pixels to.
// [Potrace] implements it by piping a thresholded bitmap through the potrace
// command-line tool and decoding its GeoJSON output into scene items.
//
// A tracer must be initialized before first use; Trace on an uninitialized
// tracer fails with [ErrNotReady].
package trace
