package imgproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// edgeMask is a binary edge map.
type edgeMask struct {
	w, h int
	on   []bool
}

func (m *edgeMask) at(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.on[y*m.w+x]
}

// sobelEdges computes a gradient magnitude map with the Sobel operator and
// keeps pixels whose magnitude exceeds threshold.
func sobelEdges(img *image.NRGBA, threshold uint8) *edgeMask {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	mask := &edgeMask{w: w, h: h, on: make([]bool, w*h)}
	if w < 3 || h < 3 {
		return mask
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			tl := int(grayAt(img, x-1, y-1))
			tc := int(grayAt(img, x, y-1))
			tr := int(grayAt(img, x+1, y-1))
			ml := int(grayAt(img, x-1, y))
			mr := int(grayAt(img, x+1, y))
			bl := int(grayAt(img, x-1, y+1))
			bc := int(grayAt(img, x, y+1))
			br := int(grayAt(img, x+1, y+1))
			gx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy := (bl + 2*bc + br) - (tl + 2*tc + tr)
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			// L1 magnitude, scaled back into byte range.
			mag := (gx + gy) / 4
			if mag > int(threshold) {
				mask.on[y*w+x] = true
			}
		}
	}
	return mask
}

// edgeMaskImage renders the mask for the diagnostics side channel.
func edgeMaskImage(m *edgeMask) *image.NRGBA {
	out := imaging.New(m.w, m.h, color.NRGBA{0, 0, 0, 255})
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.on[y*m.w+x] {
				out.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			}
		}
	}
	return out
}

type point struct{ x, y float64 }

// quad holds document corners ordered top-left, top-right, bottom-right,
// bottom-left.
type quad [4]point

// findDocumentQuad walks connected edge components and picks the largest
// 4-corner hull whose area covers at least minFrac of the image. Returns
// false when nothing qualifies, in which case rectification is skipped.
func findDocumentQuad(mask *edgeMask, minFrac float64) (quad, bool) {
	imgArea := float64(mask.w * mask.h)
	minPixels := (mask.w + mask.h) / 2 // ignore tiny specks early
	visited := make([]bool, mask.w*mask.h)
	var best quad
	bestArea := 0.0

	var stack []int
	for start := range mask.on {
		if !mask.on[start] || visited[start] {
			continue
		}
		stack = append(stack[:0], start)
		visited[start] = true
		count := 0
		// Corner extremes by coordinate sum/difference: top-left minimizes
		// x+y, bottom-right maximizes it, top-right minimizes y-x,
		// bottom-left maximizes it.
		var tl, tr, br, bl [3]int // x, y, metric
		first := true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x := idx % mask.w
			y := idx / mask.w
			count++
			sum := x + y
			diff := y - x
			if first {
				tl = [3]int{x, y, sum}
				br = [3]int{x, y, sum}
				tr = [3]int{x, y, diff}
				bl = [3]int{x, y, diff}
				first = false
			} else {
				if sum < tl[2] {
					tl = [3]int{x, y, sum}
				}
				if sum > br[2] {
					br = [3]int{x, y, sum}
				}
				if diff < tr[2] {
					tr = [3]int{x, y, diff}
				}
				if diff > bl[2] {
					bl = [3]int{x, y, diff}
				}
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= mask.w || ny >= mask.h {
						continue
					}
					nidx := ny*mask.w + nx
					if mask.on[nidx] && !visited[nidx] {
						visited[nidx] = true
						stack = append(stack, nidx)
					}
				}
			}
		}
		if count < minPixels {
			continue
		}
		q := quad{
			{float64(tl[0]), float64(tl[1])},
			{float64(tr[0]), float64(tr[1])},
			{float64(br[0]), float64(br[1])},
			{float64(bl[0]), float64(bl[1])},
		}
		area := quadArea(q)
		if area > bestArea && area >= minFrac*imgArea {
			best = q
			bestArea = area
		}
	}
	return best, bestArea > 0
}

// quadArea is the shoelace area of the ordered corner polygon.
func quadArea(q quad) float64 {
	a := 0.0
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		a += q[i].x*q[j].y - q[j].x*q[i].y
	}
	if a < 0 {
		a = -a
	}
	return a / 2
}
