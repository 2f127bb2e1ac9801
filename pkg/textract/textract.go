// Package textract is the boundary to the external text recognizers. The
// pipeline only depends on the Extractor interface; backends are selected by
// configuration.
package textract

import (
	"context"
	"errors"
	"image"
	"sort"

	"shoper/pkg/receipt"
)

// ErrUnavailable means the recognition engine is missing or misconfigured.
var ErrUnavailable = errors.New("recognition engine unavailable")

// ErrTimeout means the engine exceeded the caller-supplied deadline. Retry
// policy belongs to the caller, never to the pipeline.
var ErrTimeout = errors.New("recognition timed out")

// Extractor converts a normalized bitmap into ordered raw text lines. The
// call is synchronous; the context carries the deadline for the whole call.
type Extractor interface {
	Extract(ctx context.Context, img image.Image) ([]receipt.RawTextLine, error)
}

// positioned pairs a recognized line with its vertical pixel position so
// lines can be re-ordered top to bottom before position indexes are assigned.
type positioned struct {
	text string
	y    int
	conf float64
}

func orderLines(lines []positioned) []receipt.RawTextLine {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y < lines[j].y })
	out := make([]receipt.RawTextLine, 0, len(lines))
	for i, ln := range lines {
		out = append(out, receipt.RawTextLine{Text: ln.text, Position: i, Confidence: ln.conf})
	}
	return out
}

// wrapCtxErr maps a context failure onto the timeout sentinel.
func wrapCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
