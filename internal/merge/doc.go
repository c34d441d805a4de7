// Package merge aligns and stitches overlapping page scans.
//
// A page that does not fit on the scanner bed is captured as several fragments,
// each overlapping its left neighbour by an unknown amount. This package finds
// where each fragment belongs relative to the pieces already merged and paints
// it onto a new combined raster.
//
// # Pipeline
//
// Merging one fragment on the right of the working image has two stages:
//
//  1. Search: a coarse-to-fine grid search over horizontal offset, vertical
//     offset and a small rotation angle. The search starts on downscaled copies
//     of both images (scale factor chosen so the reference is roughly 300 px
//     tall) and narrows the window around the best pose at each finer level.
//     The score minimised is the mean absolute RGB difference between the two
//     images over a sampling rectangle in the overlap.
//  2. Compose: a new canvas is allocated, the reference is painted at the
//     origin, the candidate is rotated with bilinear resampling and painted at
//     the resolved offset. An optional seam correction keeps the reference's
//     pixels along the candidate's leading edge and feathers into the candidate.
//
// Several fragments are merged with a left fold: the result of each merge
// becomes the reference for the next (see Engine.MergeOnRight and MergeAll).
//
// # Coordinate System
//
// All rasters have their origin at (0,0), X increasing rightward and Y
// increasing downward. A positive angle rotates the +X axis toward +Y, which is
// clockwise on screen.
//
// # Determinism
//
// The downscale filter (box average) and rotation filter (bilinear) are fixed.
// Poses are visited in a fixed order (x ascending, then y ascending, then the
// rotation trials in list order) and the first pose reaching the minimum wins,
// so repeated runs over the same input return identical results even when
// columns are evaluated concurrently.
//
// # Quality
//
// MergeResult.Deviation carries the score at the winning pose. The package
// never rejects a merge on its own; QualityFor applies the informal guideline
// (below 60 is very good, below 100 is good) for callers that want one.
package merge
