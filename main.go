package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-viewer/internal/cache"
	"image-viewer/internal/decoder"
	"image-viewer/internal/discovery"
	"image-viewer/internal/event"
	"image-viewer/internal/loader"
	"image-viewer/internal/logging"
	"image-viewer/internal/memory"
	"image-viewer/internal/watcher"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"
)

func main() {
	recursive := flag.Bool("r", false, "recurse into directories")
	thumbSize := flag.Int("thumb-size", 160, "thumbnail target size in pixels")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	watch := flag.Bool("watch", false, "keep running and watch for file changes")
	noVips := flag.Bool("no-vips", false, "disable the libvips thumbnail fast path")
	flag.Parse()

	roots := flag.Args()
	if len(roots) == 0 {
		fmt.Fprintln(os.Stderr, "usage: image-viewer [flags] path...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	memory.ConfigureFromEnv()

	if !*noVips {
		decoder.InitVips()
		defer decoder.ShutdownVips()
	}

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	events := make(chan event.Event, 256)

	c := cache.New(memory.CacheBudget())
	dec := decoder.New()
	l := loader.New(dec, c, events, 0)
	l.Start()
	defer l.Stop()

	go discovery.Discover(roots, discovery.Options{Recursive: *recursive}, events)

	if *watch {
		w := watcher.New(roots, *recursive, events)
		if err := w.Start(); err != nil {
			logging.Warn("File watching disabled: %v", err)
		} else {
			defer w.Stop()
		}
	}

	run(events, l, c, *thumbSize, *watch)
}

// run is the stand-in for the interactive consumer: it correlates
// index-tagged discovery results and path-tagged load results back to its
// own view state, requesting the first image urgently and thumbnails for
// everything else in the background.
func run(events <-chan event.Event, l *loader.Loader, c *cache.Manager, thumbSize int, watch bool) {
	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var (
		total          int
		ready          int
		failed         int
		requested      int
		settled        int
		discoveryDone  bool
		firstRequested bool
		startTime      = time.Now()
	)

	// A background request dropped on lane overflow never produces an event,
	// so completion balances results received plus the loader's superseded
	// count against requests issued.
	done := func() bool {
		return discoveryDone && !watch && settled+int(l.Superseded()) >= requested
	}

	for {
		select {
		case sig := <-sigChan:
			logging.Info("Received %s, shutting down", sig)
			return

		case ev := <-events:
			switch e := ev.(type) {
			case event.TotalCount:
				total = e.Count
				fmt.Printf("discovered %d files\n", total)

			case event.MetadataReady:
				ready++
				if interactive {
					fmt.Printf("[%d/%d] %s %dx%d (%s)\n",
						e.Index+1, total, e.Meta.Path, e.Meta.Width, e.Meta.Height, e.Meta.Format)
				}
				if !firstRequested {
					firstRequested = true
					l.RequestFullImage(e.Meta.Path, e.Meta.Format)
					requested++
				}
				l.RequestThumbnail(e.Meta.Path, e.Meta.Format, thumbSize)
				requested++
				// The push above may itself have superseded an older request.
				if done() {
					return
				}

			case event.MetadataError:
				failed++
				fmt.Printf("[%d/%d] %s: error: %v\n", e.Index+1, total, e.Path, e.Err)

			case event.DiscoveryComplete:
				discoveryDone = true
				logging.Info("Discovery finished: %d ok, %d failed in %v", ready, failed, time.Since(startTime))
				if done() {
					return
				}

			case event.ImageReady:
				settled++
				fmt.Printf("loaded %s (%d frames, %s)\n",
					e.Path, len(e.Image.Frames), memory.FormatBytes(e.Image.Weight()))
				e.Image.Release()
				if done() {
					return
				}

			case event.ThumbnailReady:
				settled++
				if interactive {
					fmt.Printf("thumbnail %s %dx%d\n", e.Path, e.Thumb.Width, e.Thumb.Height)
				}
				if done() {
					return
				}

			case event.LoadError:
				settled++
				fmt.Printf("load failed %s: %v\n", e.Path, e.Err)
				if done() {
					return
				}

			case event.FileChanged:
				c.Invalidate(e.Meta.Path)
				fmt.Printf("changed %s %dx%d\n", e.Meta.Path, e.Meta.Width, e.Meta.Height)

			case event.FileDeleted:
				c.Invalidate(e.Path)
				fmt.Printf("deleted %s\n", e.Path)
			}
		}
	}
}

func serveMetrics(addr string) {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	logging.Info("Metrics server listening on %s", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Error("Metrics server error: %v", err)
	}
}
