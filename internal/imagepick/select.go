package imagepick

import "errors"

// ErrNoUsableImage means every candidate probed to zero area.
var ErrNoUsableImage = errors.New("no usable image")

// Candidate pairs an image URL with its downloaded bytes. A nil Data slice
// marks a placeholder candidate that was never downloaded; it probes to
// zero area and can never win selection.
type Candidate struct {
	URL  string
	Data []byte
}

// Largest returns the candidate with the greatest width×height product.
// Only a strictly larger area displaces the current best, so the first
// candidate seen wins ties. If no candidate has positive area, it returns
// ErrNoUsableImage.
func Largest(candidates []Candidate) (Candidate, error) {
	best := -1
	bestArea := 0
	for i, c := range candidates {
		w, h := Dimensions(c.Data)
		if area := w * h; area > bestArea {
			best = i
			bestArea = area
		}
	}
	if best < 0 {
		return Candidate{}, ErrNoUsableImage
	}
	return candidates[best], nil
}
