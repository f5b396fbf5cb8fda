package imagepick

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// makePNG creates a solid-color PNG image at the given dimensions.
func makePNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{200, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// makeJPEG creates a solid-color JPEG image at the given dimensions.
func makeJPEG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{30, 30, 200, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		w, h int
	}{
		{"png", makePNG(120, 80), 120, 80},
		{"jpeg", makeJPEG(64, 48), 64, 48},
		{"empty", nil, 0, 0},
		{"garbage", []byte("not an image"), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Dimensions(tt.blob)
			if w != tt.w || h != tt.h {
				t.Errorf("Dimensions = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestLargest_PicksMaxArea(t *testing.T) {
	candidates := []Candidate{
		{URL: "a.png", Data: makePNG(10, 10)},   // 100
		{URL: "b.png", Data: makePNG(100, 50)},  // 5000
		{URL: "c.jpg", Data: makeJPEG(20, 20)},  // 400
	}
	winner, err := Largest(candidates)
	if err != nil {
		t.Fatal(err)
	}
	if winner.URL != "b.png" {
		t.Errorf("winner = %q, want b.png", winner.URL)
	}
}

func TestLargest_FirstSeenWinsTies(t *testing.T) {
	// Equal area, different shapes: the later candidate must not displace
	// the earlier one.
	candidates := []Candidate{
		{URL: "first.png", Data: makePNG(20, 30)},
		{URL: "second.png", Data: makePNG(30, 20)},
	}
	winner, err := Largest(candidates)
	if err != nil {
		t.Fatal(err)
	}
	if winner.URL != "first.png" {
		t.Errorf("winner = %q, want first.png (first-seen tie winner)", winner.URL)
	}
}

func TestLargest_PlaceholdersNeverWin(t *testing.T) {
	candidates := []Candidate{
		{URL: "skipped.gif"}, // placeholder, no data
		{URL: "real.png", Data: makePNG(5, 5)},
	}
	winner, err := Largest(candidates)
	if err != nil {
		t.Fatal(err)
	}
	if winner.URL != "real.png" {
		t.Errorf("winner = %q, want real.png", winner.URL)
	}
}

func TestLargest_AllZeroArea(t *testing.T) {
	candidates := []Candidate{
		{URL: "a.png"},
		{URL: "b.png", Data: []byte("broken")},
	}
	_, err := Largest(candidates)
	if !errors.Is(err, ErrNoUsableImage) {
		t.Errorf("err = %v, want ErrNoUsableImage", err)
	}
}

func TestLargest_Empty(t *testing.T) {
	_, err := Largest(nil)
	if !errors.Is(err, ErrNoUsableImage) {
		t.Errorf("err = %v, want ErrNoUsableImage", err)
	}
}
