// Package event defines the asynchronous result events published by the
// discovery pipeline, the loader, and the file watcher to the interactive
// consumer.
package event
