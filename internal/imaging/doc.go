// Package imaging provides image I/O and test-page tooling around the merge
// engine.
//
// This package loads scan fragments from disk, writes merged results, splits
// pages into scanner-width fragments and renders the synthetic page used to
// exercise the aligner. All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is at the top-left corner,
// X increases rightward, and Y increases downward.
//
// # Formats
//
// Decoding supports PNG, JPEG, GIF, BMP and TIFF. Encoding supports PNG,
// JPEG, BMP and TIFF (Deflate compressed), chosen by file extension.
//
// # Fragments
//
// A fragment is a full-height vertical strip of a page. DINFragmentPositions
// reproduces the layout of a page scanned on a bed whose width is the page
// height divided by √2, with the strips spread evenly so that neighbours
// overlap. SplitFragments cuts the strips.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and may be called concurrently on images that are not being
// modified.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Fragment positions outside the page
//   - Unknown output extensions or malformed color strings
//   - File I/O errors during loading or saving
package imaging
