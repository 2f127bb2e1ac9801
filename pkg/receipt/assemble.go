package receipt

import (
	"fmt"
	"strings"
)

// Confidence weights: reconciliation outcome counts most, then clean item
// extraction, then the share of lines the classifier could place.
const (
	weightLines = 0.3
	weightItems = 0.3
	weightRecon = 0.4

	unrectifiedPenalty = 0.85
)

// Meta carries pipeline facts the assembler folds into the final record.
type Meta struct {
	TotalLines int
	NoiseLines int
	Rectified  bool
	Merchant   string
	Cashier    string
	BillNo     string
	Cash       *int64
	Change     *int64
	Warnings   []string
}

// Assemble builds the immutable Receipt from parsed items, the reconciliation
// outcome and pipeline metadata. It never fails and performs no I/O.
func Assemble(items []LineItem, rec Reconciliation, meta Meta) Receipt {
	lineScore := 0.0
	if meta.TotalLines > 0 {
		lineScore = float64(meta.TotalLines-meta.NoiseLines) / float64(meta.TotalLines)
	}
	itemScore := 0.0
	if len(items) > 0 {
		clean := 0
		for _, it := range items {
			if !it.Inconsistent {
				clean++
			}
		}
		itemScore = float64(clean) / float64(len(items))
	}
	var reconScore float64
	switch rec.Status {
	case StatusMatch:
		reconScore = 1.0
	case StatusMismatch:
		reconScore = 0.4
	default:
		reconScore = 0.2
	}
	conf := weightLines*lineScore + weightItems*itemScore + weightRecon*reconScore
	if !meta.Rectified {
		conf *= unrectifiedPenalty
	}
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	warnings := append([]string(nil), meta.Warnings...)
	for _, it := range items {
		if it.Inconsistent {
			warnings = append(warnings, fmt.Sprintf("item %q: quantity x unit price disagrees with line total", it.Description))
		}
	}
	if rec.Status == StatusMismatch {
		warnings = append(warnings, fmt.Sprintf("reconciliation mismatch: computed %s vs detected total, off by %s",
			FormatMinor(rec.ComputedSubtotal), FormatMinor(rec.Discrepancy)))
	}
	if rec.Status == StatusUnverifiable {
		warnings = append(warnings, "no total line detected; computed subtotal is best-effort")
	}

	return Receipt{
		Merchant:       meta.Merchant,
		Cashier:        meta.Cashier,
		BillNo:         meta.BillNo,
		Items:          append([]LineItem(nil), items...),
		Reconciliation: rec,
		Cash:           meta.Cash,
		Change:         meta.Change,
		Confidence:     conf,
		Warnings:       warnings,
		Rectified:      meta.Rectified,
	}
}

// FormatMinor renders a minor-unit amount as a decimal string (1050 -> "10.50").
func FormatMinor(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	if neg {
		return "-" + s
	}
	return s
}

// Summary renders a console-friendly block, one item per line.
func (r Receipt) Summary() string {
	var b strings.Builder
	if r.Merchant != "" {
		fmt.Fprintf(&b, "Merchant: %s\n", r.Merchant)
	}
	if r.Cashier != "" {
		fmt.Fprintf(&b, "Cashier: %s\n", r.Cashier)
	}
	if r.BillNo != "" {
		fmt.Fprintf(&b, "Bill: %s\n", r.BillNo)
	}
	b.WriteString("Items:\n")
	if len(r.Items) == 0 {
		b.WriteString("  (no structured items parsed)\n")
	}
	for _, it := range r.Items {
		fmt.Fprintf(&b, "  - %-20s x%-4g %s\n", it.Description, it.Quantity, FormatMinor(it.LineTotal))
	}
	fmt.Fprintf(&b, "Subtotal (computed): %s\n", FormatMinor(r.Reconciliation.ComputedSubtotal))
	if r.Reconciliation.DetectedTotal != nil {
		fmt.Fprintf(&b, "Total (detected): %s\n", FormatMinor(*r.Reconciliation.DetectedTotal))
	}
	fmt.Fprintf(&b, "Reconciliation: %s (confidence %.2f)\n", r.Reconciliation.Status, r.Confidence)
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	return b.String()
}
