package cache

import (
	"sync"

	"image-viewer/internal/imagedata"
	"image-viewer/internal/logging"
	"image-viewer/internal/memory"
	"image-viewer/internal/metrics"

	lru "github.com/hashicorp/golang-lru/v2/simplelru"
)

const (
	// fullShare is the fraction of the overall budget given to full images;
	// the remainder goes to thumbnails.
	fullShare = 0.8

	// OversizedCapacity is the fixed size of the most-recently-used side
	// list holding images too heavy for weighted accounting.
	OversizedCapacity = 3

	// maxTrackedEntries caps entry count per weighted store. Eviction is
	// weight-driven; this only bounds bookkeeping for degenerate inputs.
	maxTrackedEntries = 1 << 16
)

// Manager is a memory-weighted, concurrency-safe store of decoded images and
// thumbnails keyed by filesystem path.
//
// Full images whose weight exceeds the oversized threshold bypass the
// weighted store and live in a small fixed-capacity MRU side list instead,
// so a single huge image can neither be rejected outright nor destabilize
// the weighted store's eviction accounting. A path is present in at most one
// of the two full-image structures at any time.
type Manager struct {
	mu sync.Mutex

	fullBudget     int64
	thumbBudget    int64
	oversizedLimit int64

	fullBytes  int64
	thumbBytes int64

	full   *lru.LRU[string, *imagedata.LoadedImage]
	thumbs *lru.LRU[string, *imagedata.Thumbnail]
	giants *lru.LRU[string, *imagedata.LoadedImage]
}

// New creates a Manager with the given overall byte budget, split between
// the full-image and thumbnail stores.
func New(budget int64) *Manager {
	m := &Manager{}
	m.fullBudget = int64(float64(budget) * fullShare)
	m.thumbBudget = budget - m.fullBudget
	m.oversizedLimit = m.fullBudget / 2
	if m.oversizedLimit < 1 {
		m.oversizedLimit = 1
	}

	// Errors are impossible for positive sizes.
	m.full, _ = lru.NewLRU[string, *imagedata.LoadedImage](maxTrackedEntries, m.onEvictFull)
	m.thumbs, _ = lru.NewLRU[string, *imagedata.Thumbnail](maxTrackedEntries, m.onEvictThumb)
	m.giants, _ = lru.NewLRU[string, *imagedata.LoadedImage](OversizedCapacity, m.onEvictGiant)

	logging.Info("Cache initialized: %s full images, %s thumbnails, oversized above %s",
		memory.FormatBytes(m.fullBudget), memory.FormatBytes(m.thumbBudget),
		memory.FormatBytes(m.oversizedLimit))

	return m
}

func (m *Manager) onEvictFull(path string, img *imagedata.LoadedImage) {
	m.fullBytes -= img.Weight()
	metrics.CacheEvictionsTotal.WithLabelValues("full").Inc()
	metrics.CacheBytes.WithLabelValues("full").Set(float64(m.fullBytes))
}

func (m *Manager) onEvictThumb(path string, thumb *imagedata.Thumbnail) {
	m.thumbBytes -= thumb.Weight()
	metrics.CacheEvictionsTotal.WithLabelValues("thumbnail").Inc()
	metrics.CacheBytes.WithLabelValues("thumbnail").Set(float64(m.thumbBytes))
}

func (m *Manager) onEvictGiant(path string, img *imagedata.LoadedImage) {
	metrics.CacheEvictionsTotal.WithLabelValues("oversized").Inc()
	metrics.CacheOversizedEntries.Set(float64(m.giants.Len()))
}

// GetFull returns the cached full image for path, or nil. The side list is
// consulted first (promoting on hit), then the weighted store. The returned
// image carries an extra owner reference; callers must Release it when done.
func (m *Manager) GetFull(path string) *imagedata.LoadedImage {
	m.mu.Lock()
	defer m.mu.Unlock()

	if img, ok := m.giants.Get(path); ok {
		metrics.CacheHitsTotal.WithLabelValues("full").Inc()
		return img.Retain()
	}
	if img, ok := m.full.Get(path); ok {
		metrics.CacheHitsTotal.WithLabelValues("full").Inc()
		return img.Retain()
	}

	metrics.CacheMissesTotal.WithLabelValues("full").Inc()
	return nil
}

// PutFull stores a decoded full image, routing it to the weighted store or
// the oversized side list based on its weight.
func (m *Manager) PutFull(path string, img *imagedata.LoadedImage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putFullLocked(path, img)
}

func (m *Manager) putFullLocked(path string, img *imagedata.LoadedImage) {
	weight := img.Weight()

	// Replacing an existing entry must go through the eviction callback so
	// byte accounting stays exact.
	m.full.Remove(path)
	m.giants.Remove(path)

	if weight >= m.oversizedLimit {
		logging.Debug("Cache: %s is oversized (%s), using side list", path, memory.FormatBytes(weight))
		m.giants.Add(path, img)
		metrics.CacheOversizedEntries.Set(float64(m.giants.Len()))
		return
	}

	m.full.Add(path, img)
	m.fullBytes += weight
	for m.fullBytes > m.fullBudget && m.full.Len() > 1 {
		m.full.RemoveOldest()
	}
	metrics.CacheBytes.WithLabelValues("full").Set(float64(m.fullBytes))
}

// GetThumbnail returns the cached thumbnail for path, or nil.
func (m *Manager) GetThumbnail(path string) *imagedata.Thumbnail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if thumb, ok := m.thumbs.Get(path); ok {
		metrics.CacheHitsTotal.WithLabelValues("thumbnail").Inc()
		return thumb
	}

	metrics.CacheMissesTotal.WithLabelValues("thumbnail").Inc()
	return nil
}

// PutThumbnail stores a thumbnail in the weighted thumbnail store.
func (m *Manager) PutThumbnail(path string, thumb *imagedata.Thumbnail) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.thumbs.Remove(path)
	m.thumbs.Add(path, thumb)
	m.thumbBytes += thumb.Weight()
	for m.thumbBytes > m.thumbBudget && m.thumbs.Len() > 1 {
		m.thumbs.RemoveOldest()
	}
	metrics.CacheBytes.WithLabelValues("thumbnail").Set(float64(m.thumbBytes))
}

// Invalidate removes the path from the weighted full-image store, the
// oversized side list, and the thumbnail store. Partial invalidation is a
// correctness bug: a stale thumbnail next to a fresh full image is directly
// user-visible.
func (m *Manager) Invalidate(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.full.Remove(path)
	m.giants.Remove(path)
	m.thumbs.Remove(path)
	metrics.CacheOversizedEntries.Set(float64(m.giants.Len()))
}

// MutateFull applies a geometric mutation (rotate, flip) to the cached full
// image for path using copy-on-write: if the cache is the sole owner the
// image is mutated in place; if a concurrent renderer still holds it, the
// image is cloned and the clone replaces the cache entry. The thumbnail for
// the path is always dropped since its pixels are stale. Returns the
// post-mutation dimensions so the caller can update its metadata in
// lockstep.
func (m *Manager) MutateFull(path string, mutate func(*imagedata.LoadedImage)) (width, height int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	img, found := m.giants.Peek(path)
	if !found {
		img, found = m.full.Peek(path)
	}
	if !found {
		return 0, 0, false
	}

	if img.Shared() {
		img = img.Clone()
	}
	mutate(img)

	// Reinsert: the mutation may have changed the weight or swapped the
	// image across the oversized boundary.
	m.putFullLocked(path, img)
	m.thumbs.Remove(path)

	return img.Width, img.Height, true
}

// FullBytes returns the bytes currently tracked by the weighted full-image
// store (excluding the oversized side list).
func (m *Manager) FullBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fullBytes
}

// ThumbnailBytes returns the bytes currently tracked by the thumbnail store.
func (m *Manager) ThumbnailBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thumbBytes
}

// OversizedLen returns the number of entries in the oversized side list.
func (m *Manager) OversizedLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.giants.Len()
}

// FullBudget returns the byte budget of the weighted full-image store.
func (m *Manager) FullBudget() int64 {
	return m.fullBudget
}
