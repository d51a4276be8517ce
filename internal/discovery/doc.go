// Package discovery walks input paths, identifies candidate image files by
// content, and probes their metadata in parallel.
//
// The pipeline announces the total count of recognized files before any
// metadata is available, then streams per-file results tagged with each
// file's stable sorted index so the consumer can place them independent of
// completion order.
package discovery
