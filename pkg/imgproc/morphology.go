package imgproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// dilate grows black regions by a 3x3 structuring element, radius passes.
func dilate(img *image.NRGBA, radius int) *image.NRGBA {
	cur := img
	for r := 0; r < radius; r++ {
		cur = morphPass(cur, true)
	}
	return cur
}

// erode shrinks black regions by a 3x3 structuring element, radius passes.
func erode(img *image.NRGBA, radius int) *image.NRGBA {
	cur := img
	for r := 0; r < radius; r++ {
		cur = morphPass(cur, false)
	}
	return cur
}

// morphOpen removes isolated black specks smaller than the kernel.
func morphOpen(img *image.NRGBA, radius int) *image.NRGBA {
	return dilate(erode(img, radius), radius)
}

// morphClose bridges small white gaps inside strokes, closing characters
// broken by thresholding without merging adjacent ones.
func morphClose(img *image.NRGBA, radius int) *image.NRGBA {
	return erode(dilate(img, radius), radius)
}

func morphPass(img *image.NRGBA, grow bool) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	next := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			black := !grow
		scan:
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					x2 := x + dx
					y2 := y + dy
					inside := x2 >= 0 && y2 >= 0 && x2 < w && y2 < h
					var isBlack bool
					if inside {
						isBlack = grayAt(img, x2, y2) == 0
					}
					if grow && isBlack {
						black = true
						break scan
					}
					if !grow && (!inside || !isBlack) {
						black = false
						break scan
					}
				}
			}
			if black {
				next.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	return next
}
