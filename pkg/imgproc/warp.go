package imgproc

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// warpPerspective maps the quadrilateral document boundary to an upright
// rectangle sized from the longer of each opposing edge pair, sampling the
// source bilinearly.
func warpPerspective(img *image.NRGBA, q quad) *image.NRGBA {
	tl, tr, br, bl := q[0], q[1], q[2], q[3]
	widthA := dist(br, bl)
	widthB := dist(tr, tl)
	outW := int(math.Max(widthA, widthB))
	heightA := dist(tr, br)
	heightB := dist(tl, bl)
	outH := int(math.Max(heightA, heightB))
	if outW < 2 || outH < 2 {
		return img
	}

	// Homography from destination rectangle corners to source quad corners,
	// so each output pixel is mapped straight back into the source.
	dst := quad{
		{0, 0},
		{float64(outW - 1), 0},
		{float64(outW - 1), float64(outH - 1)},
		{0, float64(outH - 1)},
	}
	h, ok := homography(dst, q)
	if !ok {
		return img
	}

	out := imaging.New(outW, outH, color.NRGBA{255, 255, 255, 255})
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			fx := float64(x)
			fy := float64(y)
			den := h[6]*fx + h[7]*fy + 1
			if den == 0 {
				continue
			}
			sx := (h[0]*fx + h[1]*fy + h[2]) / den
			sy := (h[3]*fx + h[4]*fy + h[5]) / den
			g, inside := sampleBilinear(img, sx, sy)
			if inside {
				out.SetNRGBA(x, y, color.NRGBA{g, g, g, 255})
			}
		}
	}
	return out
}

func dist(a, b point) float64 {
	return math.Hypot(a.x-b.x, a.y-b.y)
}

// homography solves the 8-parameter projective transform taking from corners
// to their to counterparts (h33 fixed at 1). Returns false for degenerate
// corner sets.
func homography(from, to quad) ([8]float64, bool) {
	var a [8][9]float64
	for i := 0; i < 4; i++ {
		X, Y := from[i].x, from[i].y
		x, y := to[i].x, to[i].y
		a[2*i] = [9]float64{X, Y, 1, 0, 0, 0, -x * X, -x * Y, x}
		a[2*i+1] = [9]float64{0, 0, 0, X, Y, 1, -y * X, -y * Y, y}
	}
	// Gaussian elimination with partial pivoting.
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return [8]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	var h [8]float64
	for i := 0; i < 8; i++ {
		h[i] = a[i][8] / a[i][i]
	}
	return h, true
}

// sampleBilinear reads a grayscale value at a fractional position. The
// second return is false when the position falls outside the image.
func sampleBilinear(img *image.NRGBA, x, y float64) (uint8, bool) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if x < 0 || y < 0 || x > float64(w-1) || y > float64(h-1) {
		return 0, false
	}
	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= w {
		x1 = w - 1
	}
	if y1 >= h {
		y1 = h - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)
	v00 := float64(grayAt(img, x0, y0))
	v01 := float64(grayAt(img, x1, y0))
	v10 := float64(grayAt(img, x0, y1))
	v11 := float64(grayAt(img, x1, y1))
	top := v00*(1-fx) + v01*fx
	bot := v10*(1-fx) + v11*fx
	return uint8(top*(1-fy) + bot*fy + 0.5), true
}
