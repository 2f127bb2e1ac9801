package imgproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// binarize applies one global threshold to a grayscale image. Pixels at or
// below the threshold become black.
func binarize(img *image.NRGBA, threshold uint8) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if grayAt(img, x, y) <= threshold {
				out.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	return out
}

// otsuThreshold picks the global threshold that maximizes between-class
// variance of the brightness histogram.
func otsuThreshold(img *image.NRGBA) uint8 {
	var hist [256]int
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	total := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[grayAt(img, x, y)]++
		}
	}
	sum := 0.0
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}
	sumB := 0.0
	wB := 0
	best := uint8(0)
	bestVar := -1.0
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best
}

// adaptiveThreshold applies a local mean threshold using an integral image,
// so the window mean is O(1) per pixel. bias is subtracted from the mean
// before comparing, which suppresses noise in flat regions.
func adaptiveThreshold(img *image.NRGBA, window int, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	half := window / 2

	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			rowSum += int(grayAt(img, x, y))
			idx := y*w + x
			if y == 0 {
				ints[idx] = rowSum
			} else {
				ints[idx] = ints[(y-1)*w+x] + rowSum
			}
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half, y+half
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			if y1 >= h {
				y1 = h - 1
			}
			sum := ints[y1*w+x1]
			if y0 > 0 {
				sum -= ints[(y0-1)*w+x1]
			}
			if x0 > 0 {
				sum -= ints[y1*w+x0-1]
			}
			if y0 > 0 && x0 > 0 {
				sum += ints[(y0-1)*w+x0-1]
			}
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))
			th := mean - bias
			if th < 0 {
				th = 0
			}
			if int(grayAt(img, x, y)) < th {
				out.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	return out
}
