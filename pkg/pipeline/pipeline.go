// Package pipeline chains normalization, recognition, parsing and
// reconciliation into the single linear flow that turns a receipt photo into
// a structured record.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/disintegration/imaging"

	"shoper/pkg/imgproc"
	"shoper/pkg/parse"
	"shoper/pkg/receipt"
	"shoper/pkg/reconcile"
	"shoper/pkg/textract"
)

// Config is the immutable per-run configuration. Runs sharing a Config must
// treat it as read-only; the pipeline never mutates it.
type Config struct {
	Normalize      imgproc.Options
	Classifier     parse.ClassifierOptions
	Items          parse.ItemOptions
	Reconcile      reconcile.Options
	ExtractTimeout time.Duration // 0 means no deadline
}

func DefaultConfig() Config {
	return Config{
		Normalize:      imgproc.DefaultOptions(),
		Classifier:     parse.DefaultClassifierOptions(),
		Items:          parse.DefaultItemOptions(),
		Reconcile:      reconcile.DefaultOptions(),
		ExtractTimeout: 30 * time.Second,
	}
}

// Pipeline processes one receipt image per Run call. It holds no mutable
// state, so a single Pipeline may serve concurrent runs.
type Pipeline struct {
	cfg        Config
	extractor  textract.Extractor
	classifier *parse.Classifier
	items      *parse.ItemParser
}

func New(cfg Config, extractor textract.Extractor) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		extractor:  extractor,
		classifier: parse.NewClassifier(cfg.Classifier),
		items:      parse.NewItemParser(cfg.Items),
	}
}

// RunFile loads an image from disk and processes it. Unreadable files map to
// imgproc.ErrInput, which is fatal for this receipt.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*receipt.Receipt, *imgproc.Result, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s: %v", imgproc.ErrInput, path, err)
	}
	return p.Run(ctx, img)
}

// Run executes the full linear flow. Fatal failures (bad input, recognizer
// unavailable or timed out) return an error and no Receipt; everything else
// degrades into warnings on a best-effort Receipt. The returned
// imgproc.Result exposes the diagnostics side channel when step retention is
// enabled.
func (p *Pipeline) Run(ctx context.Context, img image.Image) (*receipt.Receipt, *imgproc.Result, error) {
	norm, err := imgproc.Normalize(img, p.cfg.Normalize)
	if err != nil {
		return nil, nil, fmt.Errorf("normalize: %w", err)
	}
	if !norm.Rectified {
		log.Printf("pipeline: no document boundary found, proceeding unrectified")
	}

	ectx := ctx
	if p.cfg.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, p.cfg.ExtractTimeout)
		defer cancel()
	}
	lines, err := p.extractor.Extract(ectx, norm.Image)
	if err != nil {
		return nil, norm, fmt.Errorf("extract: %w", err)
	}
	if len(lines) == 0 {
		// The binarized image can come out empty on low-contrast photos; the
		// grayscale rendition is the recognizer's fallback.
		lines, err = p.extractor.Extract(ectx, norm.Gray)
		if err != nil {
			return nil, norm, fmt.Errorf("extract fallback: %w", err)
		}
	}

	classified := p.classifier.Classify(lines)
	items, warnings := p.items.ParseAll(classified)
	det := p.classifier.DetectAmounts(classified)
	rec := reconcile.Reconcile(items, det.Subtotal, det.Tax, det.Total, p.cfg.Reconcile)
	merchant, cashier, bill := parse.ExtractHeader(classified)

	noise := 0
	for _, cl := range classified {
		if cl.Role == receipt.RoleNoise {
			noise++
		}
	}
	r := receipt.Assemble(items, rec, receipt.Meta{
		TotalLines: len(classified),
		NoiseLines: noise,
		Rectified:  norm.Rectified,
		Merchant:   merchant,
		Cashier:    cashier,
		BillNo:     bill,
		Cash:       det.Cash,
		Change:     det.Change,
		Warnings:   warnings,
	})
	log.Printf("pipeline: %d lines, %d items, reconciliation=%s confidence=%.2f",
		len(classified), len(items), r.Reconciliation.Status, r.Confidence)
	return &r, norm, nil
}
