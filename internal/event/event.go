package event

import "image-viewer/internal/imagedata"

// Event is a tagged result delivered asynchronously to the consumer.
// Delivery order across different event kinds is not guaranteed; every
// event carries enough context (index or path) for the consumer to place
// it regardless of arrival order.
type Event interface {
	isEvent()
}

// TotalCount announces how many recognized files discovery will probe,
// before any metadata is available, so the consumer can pre-allocate slots.
type TotalCount struct {
	Count int
}

// MetadataReady delivers probed metadata tagged with its original sorted
// index, not completion order.
type MetadataReady struct {
	Index int
	Meta  imagedata.Metadata
}

// MetadataError reports a per-item probe failure. Other items are
// unaffected.
type MetadataError struct {
	Index int
	Path  string
	Err   error
}

// DiscoveryComplete is the terminal discovery signal.
type DiscoveryComplete struct{}

// ImageReady delivers a fully decoded image for a path.
type ImageReady struct {
	Path  string
	Image *imagedata.LoadedImage
}

// ThumbnailReady delivers a decoded thumbnail for a path.
type ThumbnailReady struct {
	Path  string
	Thumb *imagedata.Thumbnail
}

// LoadError reports a per-path decode failure. Requests are never retried
// automatically; the consumer may re-request on user action.
type LoadError struct {
	Path string
	Err  error
}

// FileChanged reports that a watched file changed on disk and was
// successfully re-probed.
type FileChanged struct {
	Meta imagedata.Metadata
}

// FileDeleted reports that a watched file was removed or became unreadable.
type FileDeleted struct {
	Path string
}

func (TotalCount) isEvent()        {}
func (MetadataReady) isEvent()     {}
func (MetadataError) isEvent()     {}
func (DiscoveryComplete) isEvent() {}
func (ImageReady) isEvent()        {}
func (ThumbnailReady) isEvent()    {}
func (LoadError) isEvent()         {}
func (FileChanged) isEvent()       {}
func (FileDeleted) isEvent()       {}
