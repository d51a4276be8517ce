package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"image-viewer/internal/logging"

	"github.com/shirou/gopsutil/v4/mem"
)

const (
	// DefaultCacheRatio is the fraction of total system memory given to the
	// in-memory image caches when no explicit budget is configured.
	DefaultCacheRatio = 0.25

	// DefaultHeapRatio is the fraction of a container memory limit used for
	// the Go heap; the rest is reserved for libvips, pixel buffers in
	// flight, and goroutine stacks.
	DefaultHeapRatio = 0.85

	// MinCacheBudget is the floor for the cache byte budget.
	MinCacheBudget = 64 << 20

	fallbackSystemMemory = 2 << 30
)

// CacheBudget returns the byte budget for the decoded-image caches.
//
// Environment variables:
//   - CACHE_BUDGET_BYTES: explicit budget, takes precedence
//   - CACHE_MEMORY_RATIO: fraction of total system memory (default 0.25)
func CacheBudget() int64 {
	if explicit := os.Getenv("CACHE_BUDGET_BYTES"); explicit != "" {
		if budget, err := strconv.ParseInt(explicit, 10, 64); err == nil && budget > 0 {
			logging.Info("Cache budget set explicitly: %s", FormatBytes(budget))
			return budget
		}
		logging.Warn("Failed to parse CACHE_BUDGET_BYTES %q, falling back to ratio", explicit)
	}

	ratio := DefaultCacheRatio
	if ratioStr := os.Getenv("CACHE_MEMORY_RATIO"); ratioStr != "" {
		if parsed, err := strconv.ParseFloat(ratioStr, 64); err == nil && parsed > 0 && parsed <= 1.0 {
			ratio = parsed
		} else {
			logging.Warn("CACHE_MEMORY_RATIO %q invalid, using default %.2f", ratioStr, DefaultCacheRatio)
		}
	}

	total := int64(fallbackSystemMemory)
	if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 && vm.Total < math.MaxInt64 {
		total = int64(vm.Total)
	} else if err != nil {
		logging.Warn("Failed to read system memory, assuming %s: %v", FormatBytes(total), err)
	}

	budget := int64(float64(total) * ratio)
	if budget < MinCacheBudget {
		budget = MinCacheBudget
	}

	logging.Info("Cache budget: %s (%.0f%% of %s system memory)",
		FormatBytes(budget), ratio*100, FormatBytes(total))
	return budget
}

// ConfigureFromEnv sets GOMEMLIMIT from a container memory limit.
// Call early in main() before significant allocations.
//
// Environment variables:
//   - GOMEMLIMIT: if set, takes precedence (standard Go env var)
//   - MEMORY_LIMIT: container memory limit in bytes
//   - MEMORY_RATIO: fraction of the limit to give the Go heap (default 0.85)
func ConfigureFromEnv() {
	if goMemLimit := os.Getenv("GOMEMLIMIT"); goMemLimit != "" {
		logging.Info("GOMEMLIMIT set via environment: %s", goMemLimit)
		return
	}

	memLimitStr := os.Getenv("MEMORY_LIMIT")
	if memLimitStr == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT left unconfigured")
		return
	}

	memLimit, err := strconv.ParseInt(memLimitStr, 10, 64)
	if err != nil || memLimit <= 0 {
		logging.Warn("Failed to parse MEMORY_LIMIT %q: %v", memLimitStr, err)
		return
	}

	ratio := DefaultHeapRatio
	if ratioStr := os.Getenv("MEMORY_RATIO"); ratioStr != "" {
		if parsed, err := strconv.ParseFloat(ratioStr, 64); err == nil && parsed > 0 && parsed <= 1.0 {
			ratio = parsed
		} else {
			logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0), using default %.2f", ratioStr, DefaultHeapRatio)
		}
	}

	goMemLimit := int64(float64(memLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		FormatBytes(goMemLimit), ratio*100, FormatBytes(memLimit))
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
