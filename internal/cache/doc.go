// Package cache provides the memory-weighted store of decoded images and
// thumbnails.
//
// Capacity is measured in approximate bytes of pixel data, not entry count,
// with the overall budget split between full images and thumbnails. Images
// too heavy for reliable weighted accounting are kept in a small
// fixed-capacity most-recently-used side list that bypasses weight-based
// eviction. All operations are safe for concurrent use.
package cache
