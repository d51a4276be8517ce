// Package memory derives the cache byte budget from total system memory and
// configures the Go heap limit from container memory limits.
//
// The cache budget defaults to a fraction of total system memory (read via
// gopsutil) and can be pinned or tuned through environment variables. The
// budget is computed once at startup and threaded through the cache
// constructor rather than consulted globally.
package memory
