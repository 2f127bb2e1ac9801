// Package reconcile cross-checks the sum of extracted line items against the
// totals the classifier detected on the receipt itself.
package reconcile

import (
	"shoper/pkg/receipt"
)

// Options tunes the comparison. PerItemTolerance is in minor units and is
// scaled by the item count, absorbing one rounding step per printed line.
type Options struct {
	PerItemTolerance int64
}

func DefaultOptions() Options {
	return Options{PerItemTolerance: 1}
}

// Reconcile computes the item subtotal and compares it (plus any detected
// tax) against the detected grand total. Pure over its inputs: fixed items
// and detected amounts always yield the same result. Mismatches are reported
// in the status, never as errors, because OCR noise routinely produces small
// discrepancies.
func Reconcile(items []receipt.LineItem, detSubtotal, detTax, detTotal *int64, opts Options) receipt.Reconciliation {
	var computed int64
	for _, it := range items {
		computed += it.LineTotal
	}
	rec := receipt.Reconciliation{
		ComputedSubtotal: computed,
		DetectedSubtotal: detSubtotal,
		DetectedTax:      detTax,
		DetectedTotal:    detTotal,
		Status:           receipt.StatusUnverifiable,
	}
	if detTotal == nil {
		return rec
	}

	tol := opts.PerItemTolerance
	if n := int64(len(items)); n > 1 {
		tol *= n
	}
	expected := computed
	if detTax != nil {
		expected += *detTax
	}
	diff := expected - *detTotal
	if diff < 0 {
		diff = -diff
	}
	rec.Discrepancy = diff
	if diff <= tol {
		rec.Status = receipt.StatusMatch
	} else {
		rec.Status = receipt.StatusMismatch
	}
	return rec
}
