// Package decoder materializes pixel data: full-resolution multi-frame
// decodes and aspect-preserving thumbnails.
//
// Dispatch is by identified format: animated rasters decode every frame
// eagerly with normalized delays, vector documents are parsed to a scene
// tree and rasterized once, static rasters decode to a single dense RGBA
// frame. Declared dimensions are checked against safety ceilings before any
// pixel allocation so corrupt or adversarial headers fail cleanly.
//
// Thumbnail requests for raster formats prefer libvips decode-time
// shrinking when InitVips has been called, falling back to a pure-Go decode
// plus Lanczos fit.
package decoder
