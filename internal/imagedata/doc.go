// Package imagedata defines the in-memory image model: per-file metadata,
// fully decoded frame sequences, and thumbnails, plus the geometric
// transforms (rotate, flip) that operate on them.
//
// LoadedImage values are shared between the cache and concurrent renderers
// via reference counting. Mutation follows copy-on-write: check Shared(),
// clone on contention, never mutate through a shared view.
package imagedata
