package discovery

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"image-viewer/internal/event"
	"image-viewer/internal/imageformat"
)

func createPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
}

// runDiscovery runs a discovery pass to completion and returns every event up
// to and including DiscoveryComplete, in emission order.
func runDiscovery(t *testing.T, roots []string, opts Options) []event.Event {
	t.Helper()

	events := make(chan event.Event, 256)
	done := make(chan struct{})
	var collected []event.Event

	go func() {
		defer close(done)
		for ev := range events {
			collected = append(collected, ev)
			if _, ok := ev.(event.DiscoveryComplete); ok {
				return
			}
		}
	}()

	Discover(roots, opts, events)
	<-done
	return collected
}

func TestDiscoverMixedDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	valid := []string{"a.png", "b.png", "c.png"}
	for _, name := range valid {
		createPNG(t, filepath.Join(tmpDir, name))
	}

	// Recognized by magic bytes but unreadable as an image: counted in the
	// total, surfaces as a per-item error.
	corrupt := filepath.Join(tmpDir, "broken.png")
	pngSig := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0xFF, 0xFE}
	if err := os.WriteFile(corrupt, pngSig, 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	// Unrecognized content: silently dropped before the count.
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("not an image"), 0644); err != nil {
		t.Fatalf("Failed to write text file: %v", err)
	}

	// Hidden files are never considered.
	createPNG(t, filepath.Join(tmpDir, ".hidden.png"))

	collected := runDiscovery(t, []string{tmpDir}, Options{})
	if len(collected) == 0 {
		t.Fatal("No events emitted")
	}

	// The count must precede all per-item results.
	count, ok := collected[0].(event.TotalCount)
	if !ok {
		t.Fatalf("First event = %T, want TotalCount", collected[0])
	}
	if count.Count != 4 {
		t.Errorf("TotalCount = %d, want 4 (3 valid + 1 corrupt)", count.Count)
	}

	if _, ok := collected[len(collected)-1].(event.DiscoveryComplete); !ok {
		t.Fatalf("Last event = %T, want DiscoveryComplete", collected[len(collected)-1])
	}

	// Indices are assigned by sorted path order and arrive exactly once each.
	seen := make(map[int]string)
	var readyPaths []string
	var errorPaths []string
	for _, ev := range collected[1 : len(collected)-1] {
		switch e := ev.(type) {
		case event.MetadataReady:
			if prev, dup := seen[e.Index]; dup {
				t.Errorf("Index %d delivered twice (%s, %s)", e.Index, prev, e.Meta.Path)
			}
			seen[e.Index] = e.Meta.Path
			readyPaths = append(readyPaths, e.Meta.Path)
			if e.Meta.Width != 8 || e.Meta.Height != 6 {
				t.Errorf("%s probed as %dx%d, want 8x6", e.Meta.Path, e.Meta.Width, e.Meta.Height)
			}
			if e.Meta.Format != imageformat.FormatStatic {
				t.Errorf("%s format = %v, want static", e.Meta.Path, e.Meta.Format)
			}
		case event.MetadataError:
			if prev, dup := seen[e.Index]; dup {
				t.Errorf("Index %d delivered twice (%s, %s)", e.Index, prev, e.Path)
			}
			seen[e.Index] = e.Path
			errorPaths = append(errorPaths, e.Path)
		default:
			t.Errorf("Unexpected event between count and completion: %T", ev)
		}
	}

	if len(readyPaths) != 3 {
		t.Errorf("MetadataReady events = %d, want 3", len(readyPaths))
	}
	if len(errorPaths) != 1 || errorPaths[0] != corrupt {
		t.Errorf("MetadataError paths = %v, want [%s]", errorPaths, corrupt)
	}

	// No index gaps: the consumer preallocates count slots.
	for i := 0; i < count.Count; i++ {
		if _, ok := seen[i]; !ok {
			t.Errorf("Index %d never delivered", i)
		}
	}

	// Index order must track sorted path order.
	var wantSorted []string
	for i := 0; i < count.Count; i++ {
		wantSorted = append(wantSorted, seen[i])
	}
	if !sort.StringsAreSorted(wantSorted) {
		t.Errorf("Indices do not follow sorted path order: %v", wantSorted)
	}
}

func TestDiscoverShallowSkipsSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()
	createPNG(t, filepath.Join(tmpDir, "top.png"))

	nested := filepath.Join(tmpDir, "sub")
	if err := os.Mkdir(nested, 0755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}
	createPNG(t, filepath.Join(nested, "deep.png"))

	collected := runDiscovery(t, []string{tmpDir}, Options{Recursive: false})
	count := collected[0].(event.TotalCount)
	if count.Count != 1 {
		t.Errorf("Shallow TotalCount = %d, want 1", count.Count)
	}
}

func TestDiscoverRecursive(t *testing.T) {
	tmpDir := t.TempDir()
	createPNG(t, filepath.Join(tmpDir, "top.png"))

	nested := filepath.Join(tmpDir, "sub", "subsub")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create nested directory: %v", err)
	}
	createPNG(t, filepath.Join(nested, "deep.png"))

	// Hidden directories are pruned entirely.
	hidden := filepath.Join(tmpDir, ".thumbnails")
	if err := os.Mkdir(hidden, 0755); err != nil {
		t.Fatalf("Failed to create hidden directory: %v", err)
	}
	createPNG(t, filepath.Join(hidden, "cached.png"))

	collected := runDiscovery(t, []string{tmpDir}, Options{Recursive: true})
	count := collected[0].(event.TotalCount)
	if count.Count != 2 {
		t.Errorf("Recursive TotalCount = %d, want 2", count.Count)
	}
}

func TestDiscoverExplicitFiles(t *testing.T) {
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.png")
	b := filepath.Join(tmpDir, "b.png")
	createPNG(t, a)
	createPNG(t, b)

	collected := runDiscovery(t, []string{b, a}, Options{})
	count := collected[0].(event.TotalCount)
	if count.Count != 2 {
		t.Errorf("TotalCount = %d, want 2", count.Count)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	collected := runDiscovery(t, []string{"/nonexistent/path"}, Options{})

	count, ok := collected[0].(event.TotalCount)
	if !ok || count.Count != 0 {
		t.Errorf("Missing root should yield TotalCount 0, got %v", collected[0])
	}
	if _, ok := collected[len(collected)-1].(event.DiscoveryComplete); !ok {
		t.Error("Discovery must complete even when every root is inaccessible")
	}
}
