package imageformat

import (
	"bytes"
	"os"
)

// Format classifies a file's content into one of the supported image kinds.
// It is derived from content sniffing, never from the file extension.
type Format int

const (
	// FormatUnrecognized means the content matched no supported format.
	FormatUnrecognized Format = iota
	// FormatStatic is a single-frame raster image (jpeg, png, webp, bmp, tiff).
	FormatStatic
	// FormatAnimated is a multi-frame raster image (gif).
	FormatAnimated
	// FormatVector is a scalable vector document (svg).
	FormatVector
)

// PrefixSize is the number of leading bytes read for identification.
// Large enough for every magic number in the table and for the root tag
// of any reasonable vector document preamble.
const PrefixSize = 512

// String returns a short name for the format.
func (f Format) String() string {
	switch f {
	case FormatStatic:
		return "static"
	case FormatAnimated:
		return "animated"
	case FormatVector:
		return "vector"
	default:
		return "unrecognized"
	}
}

// Identify classifies content by its leading bytes. Binary magic numbers are
// checked first; if none match, the prefix is scanned case-insensitively for
// a vector markup root tag. Anything else is FormatUnrecognized.
func Identify(prefix []byte) Format {
	switch {
	case len(prefix) >= 3 && prefix[0] == 0xFF && prefix[1] == 0xD8 && prefix[2] == 0xFF:
		return FormatStatic // jpeg

	case len(prefix) >= 8 && prefix[0] == 0x89 && prefix[1] == 0x50 && prefix[2] == 0x4E && prefix[3] == 0x47:
		return FormatStatic // png

	case len(prefix) >= 4 && prefix[0] == 0x47 && prefix[1] == 0x49 && prefix[2] == 0x46 && prefix[3] == 0x38:
		return FormatAnimated // gif

	case len(prefix) >= 12 && prefix[0] == 0x52 && prefix[1] == 0x49 && prefix[2] == 0x46 && prefix[3] == 0x46 &&
		prefix[8] == 0x57 && prefix[9] == 0x45 && prefix[10] == 0x42 && prefix[11] == 0x50:
		return FormatStatic // webp

	case len(prefix) >= 2 && prefix[0] == 0x42 && prefix[1] == 0x4D:
		return FormatStatic // bmp

	case len(prefix) >= 4 && ((prefix[0] == 0x49 && prefix[1] == 0x49 && prefix[2] == 0x2A && prefix[3] == 0x00) ||
		(prefix[0] == 0x4D && prefix[1] == 0x4D && prefix[2] == 0x00 && prefix[3] == 0x2A)):
		return FormatStatic // tiff
	}

	if bytes.Contains(bytes.ToLower(prefix), []byte("<svg")) {
		return FormatVector
	}

	return FormatUnrecognized
}

// IdentifyFile reads the leading bytes of the file at path and classifies
// them. It opens a single handle and never reads more than PrefixSize bytes.
func IdentifyFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnrecognized, err
	}
	defer f.Close()

	prefix := make([]byte, PrefixSize)
	n, err := f.Read(prefix)
	if n == 0 && err != nil {
		return FormatUnrecognized, err
	}

	return Identify(prefix[:n]), nil
}
