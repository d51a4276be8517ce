// Package logging provides leveled logging controlled by the DEBUG and
// LOG_LEVEL environment variables.
package logging
