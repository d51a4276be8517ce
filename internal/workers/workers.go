package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the number of workers to use for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 0.5 for heavy decode work that must leave headroom for the
//     interactive thread and decoder-internal parallelism
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count; use 0 for no limit.
// Can be overridden with the LOADER_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("LOADER_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	count := int(float64(available) * multiplier)
	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}

	return count
}

// ForDecode returns the worker count for the decode pool: at most half of
// the logical cores, so the interactive thread and the decoders' own
// parallelism keep headroom.
func ForDecode(limit int) int {
	return Count(0.5, limit)
}

// ForIO returns the worker count for I/O-bound tasks such as metadata
// probing (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}
