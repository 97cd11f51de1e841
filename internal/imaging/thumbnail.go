// Package imaging produces preview images for saved gallery entries.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
)

// ThumbnailContentType is the content type of every thumbnail.
const ThumbnailContentType = "image/png"

// ThumbnailName is the object name of the thumbnail stored next to name.
func ThumbnailName(name string) string {
	return name + ".thumb.png"
}

// Thumbnail scales the image to fit a size x size box, keeping its aspect
// ratio, and encodes it as PNG. Images already smaller than the box are
// re-encoded unchanged.
func Thumbnail(data []byte, size uint) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("thumbnail size must be positive")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := resize.Thumbnail(size, size, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}
