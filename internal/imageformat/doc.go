// Package imageformat identifies image files by content sniffing and probes
// their dimensions without decoding pixel data.
//
// Identification reads only a small fixed-size prefix and classifies it into
// a closed set of formats: single-frame raster, multi-frame raster, or
// scalable vector. Files whose content matches none of these are reported as
// unrecognized and should be skipped, never decoded.
package imageformat
