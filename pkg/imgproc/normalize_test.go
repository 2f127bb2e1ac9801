package imgproc

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestNormalizeRejectsDegenerate(t *testing.T) {
	if _, err := Normalize(nil, DefaultOptions()); !errors.Is(err, ErrInput) {
		t.Fatalf("nil image: err = %v", err)
	}
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if _, err := Normalize(empty, DefaultOptions()); !errors.Is(err, ErrInput) {
		t.Fatalf("zero-area image: err = %v", err)
	}
}

// documentPhoto paints a bright tilted quadrilateral "page" on a dark
// background, with a few dark strokes as fake text.
func documentPhoto(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{25, 25, 25, 255})
	q := quad{{40, 30}, {float64(w - 50), 40}, {float64(w - 40), float64(h - 30)}, {30, float64(h - 40)}}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if insideQuad(q, float64(x), float64(y)) {
				img.SetNRGBA(x, y, color.NRGBA{235, 235, 235, 255})
			}
		}
	}
	for row := 0; row < 4; row++ {
		y := 60 + row*30
		for x := 70; x < w-80; x++ {
			img.SetNRGBA(x, y, color.NRGBA{20, 20, 20, 255})
			img.SetNRGBA(x, y+1, color.NRGBA{20, 20, 20, 255})
		}
	}
	return img
}

func insideQuad(q quad, x, y float64) bool {
	sign := 0.0
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		cross := (q[j].x-q[i].x)*(y-q[i].y) - (q[j].y-q[i].y)*(x-q[i].x)
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if (sign > 0) != (cross > 0) {
			return false
		}
	}
	return true
}

func TestNormalizeRectifiesDocument(t *testing.T) {
	res, err := Normalize(documentPhoto(320, 240), DefaultOptions())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !res.Rectified {
		t.Fatal("document boundary not detected")
	}
	if !twoTone(res.Image) {
		t.Fatal("output not binarized")
	}
	// The warped page is smaller than the full photo.
	if res.Image.Bounds().Dx() >= 320 || res.Image.Bounds().Dy() >= 240 {
		t.Fatalf("warp did not crop to the page: %v", res.Image.Bounds())
	}
}

func TestNormalizeFlatImagePassesThrough(t *testing.T) {
	// No edges at all: rectification must be skipped, not fail.
	flat := imaging.New(120, 90, color.NRGBA{128, 128, 128, 255})
	res, err := Normalize(flat, DefaultOptions())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if res.Rectified {
		t.Fatal("rectified flag set with no detectable boundary")
	}
	if res.Image.Bounds().Dx() != 120 || res.Image.Bounds().Dy() != 90 {
		t.Fatalf("pass-through changed dimensions: %v", res.Image.Bounds())
	}
}

func TestNormalizeKeepsSteps(t *testing.T) {
	opts := DefaultOptions()
	opts.KeepSteps = true
	res, err := Normalize(documentPhoto(200, 160), opts)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for _, tag := range []string{"gray", "edges", "threshold"} {
		if _, ok := res.Steps[tag]; !ok {
			t.Fatalf("missing diagnostic step %q", tag)
		}
	}
}

func TestNormalizeSecondPassKeepsBoundaries(t *testing.T) {
	// Normalizing an already-normalized image must not shrink the document
	// again: the re-detected boundary is (close to) the full frame.
	first, err := Normalize(documentPhoto(320, 240), DefaultOptions())
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := Normalize(first.Image, DefaultOptions())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	w1, h1 := first.Image.Bounds().Dx(), first.Image.Bounds().Dy()
	w2, h2 := second.Image.Bounds().Dx(), second.Image.Bounds().Dy()
	if w2 < w1*8/10 || h2 < h1*8/10 {
		t.Fatalf("second normalization shrank the page: %dx%d -> %dx%d", w1, h1, w2, h2)
	}
}

func TestMorphCloseBridgesGaps(t *testing.T) {
	img := imaging.New(21, 7, color.NRGBA{255, 255, 255, 255})
	// A stroke with a one-pixel gap.
	for x := 3; x <= 17; x++ {
		if x == 10 {
			continue
		}
		img.SetNRGBA(x, 3, color.NRGBA{0, 0, 0, 255})
	}
	closed := morphClose(img, 1)
	if grayAt(closed, 10, 3) != 0 {
		t.Fatal("close did not bridge the gap")
	}
}

func TestMorphOpenRemovesSpecks(t *testing.T) {
	img := imaging.New(15, 15, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(7, 7, color.NRGBA{0, 0, 0, 255})
	opened := morphOpen(img, 1)
	if grayAt(opened, 7, 7) != 255 {
		t.Fatal("open kept an isolated speck")
	}
}
