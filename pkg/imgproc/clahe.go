package imgproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// equalizeLocal is a contrast-limited tiled histogram equalization. The image
// is split into tiles x tiles regions, each gets a clipped-histogram CDF
// mapping, and every pixel blends the mappings of its four surrounding tile
// centers so tile seams stay invisible.
func equalizeLocal(img *image.NRGBA, tiles int, clip float64) *image.NRGBA {
	if tiles < 2 {
		tiles = 2
	}
	if clip < 1 {
		clip = 1
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w < tiles || h < tiles {
		return img
	}
	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles

	// Per-tile lookup tables.
	luts := make([][256]uint8, tiles*tiles)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			x0 := tx * tileW
			y0 := ty * tileH
			x1 := x0 + tileW
			y1 := y0 + tileH
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}
			luts[ty*tiles+tx] = clippedCDF(img, x0, y0, x1, y1, clip)
		}
	}

	out := imaging.New(w, h, color.NRGBA{0, 0, 0, 255})
	for y := 0; y < h; y++ {
		// Position relative to tile centers along Y.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(fy)
		if fy < 0 {
			ty0 = 0
			fy = 0
		}
		ty1 := ty0 + 1
		if ty1 >= tiles {
			ty1 = tiles - 1
			ty0 = ty1
		}
		wy := fy - float64(ty0)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(fx)
			if fx < 0 {
				tx0 = 0
				fx = 0
			}
			tx1 := tx0 + 1
			if tx1 >= tiles {
				tx1 = tiles - 1
				tx0 = tx1
			}
			wx := fx - float64(tx0)

			v := grayAt(img, x, y)
			v00 := float64(luts[ty0*tiles+tx0][v])
			v01 := float64(luts[ty0*tiles+tx1][v])
			v10 := float64(luts[ty1*tiles+tx0][v])
			v11 := float64(luts[ty1*tiles+tx1][v])
			top := v00*(1-wx) + v01*wx
			bot := v10*(1-wx) + v11*wx
			g := uint8(top*(1-wy) + bot*wy + 0.5)
			out.SetNRGBA(x, y, color.NRGBA{g, g, g, 255})
		}
	}
	return out
}

// clippedCDF builds the equalization lookup table for one tile. Histogram
// mass above clip * flat-bin-height is redistributed evenly so noise in flat
// regions is not amplified.
func clippedCDF(img *image.NRGBA, x0, y0, x1, y1 int, clip float64) [256]uint8 {
	var hist [256]int
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[grayAt(img, x, y)]++
			n++
		}
	}
	var lut [256]uint8
	if n == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}
	limit := int(clip * float64(n) / 256)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i, c := range hist {
		if c > limit {
			excess += c - limit
			hist[i] = limit
		}
	}
	share := excess / 256
	for i := range hist {
		hist[i] += share
	}
	cum := 0
	for i, c := range hist {
		cum += c
		lut[i] = uint8((cum*255 + n/2) / n)
	}
	return lut
}

// grayAt reads the brightness of a pixel in an already-grayscale NRGBA image.
func grayAt(img *image.NRGBA, x, y int) uint8 {
	b := img.Bounds()
	return img.Pix[(y-b.Min.Y)*img.Stride+(x-b.Min.X)*4]
}
