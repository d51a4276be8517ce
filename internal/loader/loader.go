package loader

import (
	"sync"
	"time"

	"image-viewer/internal/cache"
	"image-viewer/internal/decoder"
	"image-viewer/internal/event"
	"image-viewer/internal/imageformat"
	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"
	"image-viewer/internal/workers"
)

const (
	// BackgroundCap bounds outstanding background (prefetch) requests.
	BackgroundCap = 200

	// idleWait is how long an idle worker sleeps before re-checking the
	// lanes; short enough that urgent work arriving during the wait is
	// picked up promptly even if the wake signal was already consumed by
	// another worker.
	idleWait = 50 * time.Millisecond
)

// Loader schedules decode work across a fixed worker pool with strict
// urgent-before-background priority. Both request methods are non-blocking;
// results arrive as events. Decode failures produce per-path error events
// and never terminate a worker.
type Loader struct {
	queue  *requestQueue
	dec    *decoder.Decoder
	cache  *cache.Manager
	events chan<- event.Event

	numWorkers int
	stop       chan struct{}
	wg         sync.WaitGroup
}

// New creates a Loader publishing results to events. numWorkers <= 0 sizes
// the pool automatically at no more than half of the logical cores, leaving
// headroom for decoder-internal parallelism and the interactive thread.
func New(dec *decoder.Decoder, c *cache.Manager, events chan<- event.Event, numWorkers int) *Loader {
	if numWorkers <= 0 {
		numWorkers = workers.ForDecode(0)
	}

	return &Loader{
		queue:      newRequestQueue(BackgroundCap),
		dec:        dec,
		cache:      c,
		events:     events,
		numWorkers: numWorkers,
		stop:       make(chan struct{}),
	}
}

// Start launches the worker pool.
func (l *Loader) Start() {
	metrics.LoaderWorkers.Set(float64(l.numWorkers))
	logging.Info("Loader starting %d workers", l.numWorkers)

	for i := 0; i < l.numWorkers; i++ {
		l.wg.Add(1)
		go l.worker(i)
	}
}

// Stop shuts down the worker pool. Requests already started run to
// completion; queued requests are discarded.
func (l *Loader) Stop() {
	close(l.stop)
	l.wg.Wait()
}

// RequestFullImage enqueues an urgent full-resolution decode.
// Fire-and-forget; the result arrives as an ImageReady or LoadError event.
func (l *Loader) RequestFullImage(path string, format imageformat.Format) {
	metrics.LoaderRequestsTotal.WithLabelValues("urgent").Inc()
	l.queue.pushUrgent(Request{Path: path, Format: format})
}

// RequestThumbnail enqueues a speculative thumbnail decode on the background
// lane. If the lane is at capacity the oldest outstanding request is
// silently superseded.
func (l *Loader) RequestThumbnail(path string, format imageformat.Format, size int) {
	metrics.LoaderRequestsTotal.WithLabelValues("background").Inc()
	l.queue.pushBackground(Request{Path: path, Format: format, Thumbnail: true, TargetSize: size})
}

// QueueDepths returns the current lane depths.
func (l *Loader) QueueDepths() (urgent, background int) {
	return l.queue.depths()
}

// Superseded returns how many background requests were dropped unprocessed
// because the lane was at capacity. A dropped request never produces an
// event, so a consumer balancing requests against results must fold this
// count in or it will wait forever for results that are not coming.
func (l *Loader) Superseded() int64 {
	return l.queue.supersededCount()
}

func (l *Loader) worker(id int) {
	defer l.wg.Done()
	logging.Debug("Loader worker %d started", id)

	for {
		select {
		case <-l.stop:
			logging.Debug("Loader worker %d stopped", id)
			return
		default:
		}

		r, ok := l.queue.pop()
		if !ok {
			select {
			case <-l.queue.wake:
			case <-time.After(idleWait):
			case <-l.stop:
				logging.Debug("Loader worker %d stopped", id)
				return
			}
			continue
		}

		l.process(r)
	}
}

func (l *Loader) process(r Request) {
	if r.Thumbnail {
		thumb, err := l.dec.DecodeThumbnail(r.Path, r.Format, r.TargetSize)
		if err != nil {
			logging.Debug("Thumbnail decode failed for %s: %v", r.Path, err)
			metrics.DecodeErrorsTotal.WithLabelValues("thumbnail").Inc()
			l.events <- event.LoadError{Path: r.Path, Err: err}
			return
		}
		l.cache.PutThumbnail(r.Path, thumb)
		l.events <- event.ThumbnailReady{Path: r.Path, Thumb: thumb}
		return
	}

	img, err := l.dec.DecodeFull(r.Path, r.Format)
	if err != nil {
		logging.Debug("Full decode failed for %s: %v", r.Path, err)
		metrics.DecodeErrorsTotal.WithLabelValues("full").Inc()
		l.events <- event.LoadError{Path: r.Path, Err: err}
		return
	}
	l.cache.PutFull(r.Path, img)
	// The event hands the consumer its own reference; the consumer must
	// Release it when done rendering.
	l.events <- event.ImageReady{Path: r.Path, Image: img.Retain()}
}
