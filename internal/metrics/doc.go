// Package metrics defines Prometheus collectors for the asset pipeline:
// discovery throughput, probe failures, loader queue depths and decode
// latency, cache retention and eviction, and watcher activity.
//
// Collectors are registered with the default registry via promauto and
// exposed by the optional metrics HTTP endpoint in main.
package metrics
