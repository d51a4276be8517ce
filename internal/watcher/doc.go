// Package watcher monitors the filesystem for changes to discovered files
// and re-issues probe requests, surfacing changes and deletions as consumer
// events.
package watcher
