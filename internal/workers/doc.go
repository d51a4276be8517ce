// Package workers calculates worker pool sizes based on available CPU
// parallelism, with an environment-variable override for manual tuning.
package workers
