package textract

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"shoper/pkg/receipt"
)

// Tesseract runs a local Tesseract engine via gosseract. Each Extract call
// uses a fresh client, so one Tesseract value is safe for concurrent runs.
type Tesseract struct {
	Lang string
	// PSM defaults to a uniform block of text, which suits rectified receipts.
	PSM gosseract.PageSegMode
}

func NewTesseract(lang string) *Tesseract {
	if lang == "" {
		lang = "eng"
	}
	return &Tesseract{Lang: lang, PSM: gosseract.PSM_SINGLE_BLOCK}
}

// Extract writes the bitmap to a temp PNG, runs one OCR pass, and returns
// the recognized lines ordered top to bottom. The context deadline bounds
// the whole call; on expiry the engine result is abandoned.
func (t *Tesseract) Extract(ctx context.Context, img image.Image) ([]receipt.RawTextLine, error) {
	tmpFile, err := os.CreateTemp("", "shoper-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("ocr temp file: %w", err)
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmp)
	if err := imaging.Save(img, tmp); err != nil {
		return nil, fmt.Errorf("ocr temp save: %w", err)
	}

	type result struct {
		lines []positioned
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		ch <- t.run(tmp)
	}()
	select {
	case <-ctx.Done():
		return nil, wrapCtxErr(ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return orderLines(r.lines), nil
	}
}

func (t *Tesseract) run(path string) (r struct {
	lines []positioned
	err   error
}) {
	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage(t.Lang)
	_ = client.SetPageSegMode(t.PSM)
	client.SetImage(path)

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err == nil && len(boxes) > 0 {
		for _, b := range boxes {
			text := strings.TrimSpace(b.Word)
			if text == "" {
				continue
			}
			r.lines = append(r.lines, positioned{text: text, y: b.Box.Min.Y, conf: b.Confidence / 100})
		}
		return r
	}

	// Some builds cannot iterate line boxes; fall back to the plain text
	// output and keep the raw line order.
	text, terr := client.Text()
	if terr != nil {
		r.err = fmt.Errorf("%w: %v", ErrUnavailable, terr)
		return r
	}
	for i, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		r.lines = append(r.lines, positioned{text: ln, y: i, conf: -1})
	}
	return r
}
