package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"image-viewer/internal/event"
	"image-viewer/internal/imagedata"
	"image-viewer/internal/imageformat"
	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"
	"image-viewer/internal/workers"

	"golang.org/x/sync/errgroup"
)

// Options configures a discovery run.
type Options struct {
	// Recursive walks directories to unbounded depth; otherwise directory
	// entries are included to depth 1 only.
	Recursive bool

	// Workers bounds parallel metadata probing (0 = auto, I/O sized).
	Workers int
}

type task struct {
	path   string
	format imageformat.Format
}

// Discover expands roots into a sorted file list, identifies each file's
// format, announces the total count of recognized files, probes them in
// parallel, and emits index-tagged results followed by a terminal
// DiscoveryComplete. Every emitted index refers to the file's position in
// the sorted task list, never to completion order, so the consumer can
// place results directly into pre-allocated slots.
func Discover(roots []string, opts Options, events chan<- event.Event) {
	startTime := time.Now()

	paths := expand(roots, opts.Recursive)

	// Identification is cheap and I/O bound; it stays single-threaded to
	// avoid seek contention across many small prefix reads.
	tasks := make([]task, 0, len(paths))
	for _, path := range paths {
		metrics.DiscoveryFilesTotal.Inc()
		format, err := imageformat.IdentifyFile(path)
		if err != nil {
			logging.Debug("Discovery: cannot read %s: %v", path, err)
			metrics.DiscoveryUnrecognizedTotal.Inc()
			continue
		}
		if format == imageformat.FormatUnrecognized {
			logging.Debug("Discovery: skipping unrecognized file %s", path)
			metrics.DiscoveryUnrecognizedTotal.Inc()
			continue
		}
		tasks = append(tasks, task{path: path, format: format})
	}

	// The count goes out before any metadata so the consumer can size its
	// view without reflowing as results trickle in.
	events <- event.TotalCount{Count: len(tasks)}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = workers.ForIO(16)
	}

	var g errgroup.Group
	g.SetLimit(numWorkers)
	for i, t := range tasks {
		g.Go(func() error {
			probeStart := time.Now()
			dims, err := imageformat.Probe(t.path, t.format)
			metrics.ProbeDuration.Observe(time.Since(probeStart).Seconds())

			if err != nil {
				metrics.ProbeErrorsTotal.Inc()
				events <- event.MetadataError{Index: i, Path: t.path, Err: err}
				return nil
			}
			events <- event.MetadataReady{Index: i, Meta: imagedata.Metadata{
				Path:   t.path,
				Width:  dims.Width,
				Height: dims.Height,
				Format: t.format,
			}}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // probe failures are per-item events, never group errors

	events <- event.DiscoveryComplete{}
	logging.Info("Discovery complete: %d files in %v (%d candidates examined)",
		len(tasks), time.Since(startTime), len(paths))
}

// expand flattens the root paths into a deterministic sorted file list.
// Hidden files and directories are skipped.
func expand(roots []string, recursive bool) []string {
	var files []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			logging.Warn("Discovery: cannot access %s: %v", root, err)
			continue
		}

		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		if recursive {
			files = append(files, walkRecursive(root)...)
		} else {
			files = append(files, listShallow(root)...)
		}
	}

	sort.Strings(files)
	return files
}

func walkRecursive(root string) []string {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Discovery: error accessing %s: %v", path, err)
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		logging.Warn("Discovery: walk of %s failed: %v", root, err)
	}
	return files
}

func listShallow(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		logging.Warn("Discovery: cannot list %s: %v", root, err)
		return nil
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(root, entry.Name()))
	}
	return files
}
