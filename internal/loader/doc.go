// Package loader schedules decode work across a fixed worker pool.
//
// Requests arrive on two lanes: an unbounded urgent FIFO for interactively
// visible images and a capped background LIFO stack for speculative
// thumbnail prefetch. Workers always drain urgent work first; background
// overflow drops the oldest entry, since the newest request tracks the
// user's current scroll position. There is no cancellation of in-flight
// work; supersession happens only by eviction from the background lane
// before a worker picks the request up.
package loader
