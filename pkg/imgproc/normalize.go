package imgproc

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInput is returned for degenerate images (zero area, unreadable format).
var ErrInput = errors.New("degenerate input image")

// ThresholdMode selects the binarization strategy.
type ThresholdMode int

const (
	// ThresholdAdaptive uses a local mean threshold; default, copes with
	// uneven lighting in phone photos.
	ThresholdAdaptive ThresholdMode = iota
	// ThresholdOtsu uses one global threshold; better for flat scans.
	ThresholdOtsu
)

// Options configures the normalization pipeline. The zero value is not
// usable; start from DefaultOptions.
type Options struct {
	ContrastEnhance bool    // tiled histogram equalization before edge detection
	ClaheTiles      int     // tile grid size per axis
	ClaheClip       float64 // histogram clip limit as multiple of the flat bin height
	BlurSigma       float64 // gaussian sigma, 0 disables
	EdgeThreshold   uint8   // gradient magnitude cutoff for the edge map
	MinDocAreaFrac  float64 // reject boundary quads smaller than this fraction of the image
	Threshold       ThresholdMode
	AdaptiveWindow  int // odd window size for the local mean
	AdaptiveBias    int // subtracted from the local mean
	MorphRadius     int // open+close radius, 0 disables
	KeepSteps       bool
}

func DefaultOptions() Options {
	return Options{
		ContrastEnhance: true,
		ClaheTiles:      8,
		ClaheClip:       2.5,
		BlurSigma:       1.0,
		EdgeThreshold:   80,
		MinDocAreaFrac:  0.2,
		Threshold:       ThresholdAdaptive,
		AdaptiveWindow:  31,
		AdaptiveBias:    10,
		MorphRadius:     1,
	}
}

// Result holds the OCR-ready bitmap plus fallbacks and optional diagnostics.
type Result struct {
	Image     *image.NRGBA // binarized, rectified when a boundary was found
	Gray      *image.NRGBA // grayscale fallback for the recognizer
	Rectified bool
	Steps     map[string]image.Image // populated only when Options.KeepSteps
}

func (r *Result) keep(tag string, img image.Image) {
	if r.Steps != nil {
		r.Steps[tag] = img
	}
}

// Normalize converts an arbitrarily angled, unevenly lit receipt photo into a
// rectified two-tone bitmap. It fails only on degenerate input; when no
// document boundary qualifies it skips rectification and reports
// Rectified=false instead of failing.
func Normalize(src image.Image, opts Options) (*Result, error) {
	if src == nil {
		return nil, ErrInput
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInput, b.Dx(), b.Dy())
	}

	res := &Result{}
	if opts.KeepSteps {
		res.Steps = map[string]image.Image{}
	}

	gray := imaging.Grayscale(src)
	res.keep("gray", gray)

	enhanced := gray
	if opts.ContrastEnhance {
		enhanced = equalizeLocal(gray, opts.ClaheTiles, opts.ClaheClip)
		res.keep("clahe", enhanced)
	}

	blurred := enhanced
	if opts.BlurSigma > 0 {
		blurred = imaging.Blur(enhanced, opts.BlurSigma)
		res.keep("blur", blurred)
	}

	edges := sobelEdges(blurred, opts.EdgeThreshold)
	res.keep("edges", edgeMaskImage(edges))

	work := enhanced
	if quad, ok := findDocumentQuad(edges, opts.MinDocAreaFrac); ok {
		work = warpPerspective(enhanced, quad)
		res.Rectified = true
		res.keep("warped", work)
	}
	res.Gray = work

	var bin *image.NRGBA
	switch opts.Threshold {
	case ThresholdOtsu:
		bin = binarize(work, otsuThreshold(work))
	default:
		bin = adaptiveThreshold(work, opts.AdaptiveWindow, opts.AdaptiveBias)
	}
	res.keep("threshold", bin)

	if opts.MorphRadius > 0 {
		bin = morphOpen(bin, opts.MorphRadius)
		bin = morphClose(bin, opts.MorphRadius)
		res.keep("morph", bin)
	}

	res.Image = bin
	return res, nil
}
