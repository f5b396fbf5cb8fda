// Package imagepick selects the largest image on an article page: it
// extracts <img> candidates, downloads them, probes pixel dimensions, and
// picks the greatest width×height product.
package imagepick

import (
	"bytes"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Dimensions reports the pixel width and height of an encoded image by
// decoding only its header. An empty or undecodable blob reports 0×0.
func Dimensions(blob []byte) (w, h int) {
	if len(blob) == 0 {
		return 0, 0
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(blob))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
