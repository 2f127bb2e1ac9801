package reconcile

import (
	"testing"

	"shoper/pkg/receipt"
)

func items() []receipt.LineItem {
	return []receipt.LineItem{
		{Description: "Apple", Quantity: 2, UnitPrice: 100, LineTotal: 200},
		{Description: "Bread", Quantity: 1, UnitPrice: 150, LineTotal: 150},
	}
}

func amt(v int64) *int64 { return &v }

func TestReconcileMatch(t *testing.T) {
	rec := Reconcile(items(), nil, nil, amt(350), DefaultOptions())
	if rec.Status != receipt.StatusMatch {
		t.Fatalf("status = %s, want match", rec.Status)
	}
	if rec.ComputedSubtotal != 350 {
		t.Fatalf("computed subtotal = %d", rec.ComputedSubtotal)
	}
	if rec.Discrepancy != 0 {
		t.Fatalf("discrepancy = %d", rec.Discrepancy)
	}
}

func TestReconcileMismatch(t *testing.T) {
	rec := Reconcile(items(), nil, nil, amt(400), DefaultOptions())
	if rec.Status != receipt.StatusMismatch {
		t.Fatalf("status = %s, want mismatch", rec.Status)
	}
	if rec.Discrepancy != 50 {
		t.Fatalf("discrepancy = %d, want 50", rec.Discrepancy)
	}
}

func TestReconcileUnverifiable(t *testing.T) {
	rec := Reconcile(items(), nil, nil, nil, DefaultOptions())
	if rec.Status != receipt.StatusUnverifiable {
		t.Fatalf("status = %s, want unverifiable", rec.Status)
	}
	if rec.ComputedSubtotal != 350 {
		t.Fatalf("computed subtotal must still be reported: %d", rec.ComputedSubtotal)
	}
}

func TestReconcileWithTax(t *testing.T) {
	rec := Reconcile(items(), amt(350), amt(35), amt(385), DefaultOptions())
	if rec.Status != receipt.StatusMatch {
		t.Fatalf("status = %s, want match", rec.Status)
	}
}

func TestReconcileToleranceScalesWithItems(t *testing.T) {
	// Two items allow a 2 minor-unit rounding gap.
	rec := Reconcile(items(), nil, nil, amt(352), DefaultOptions())
	if rec.Status != receipt.StatusMatch {
		t.Fatalf("status = %s, want match within scaled tolerance", rec.Status)
	}
	rec = Reconcile(items(), nil, nil, amt(353), DefaultOptions())
	if rec.Status != receipt.StatusMismatch {
		t.Fatalf("status = %s, want mismatch beyond tolerance", rec.Status)
	}
}

func TestReconcileDeterminism(t *testing.T) {
	a := Reconcile(items(), nil, amt(35), amt(385), DefaultOptions())
	b := Reconcile(items(), nil, amt(35), amt(385), DefaultOptions())
	if a.Status != b.Status || a.Discrepancy != b.Discrepancy || a.ComputedSubtotal != b.ComputedSubtotal {
		t.Fatalf("reconciliation not deterministic: %+v vs %+v", a, b)
	}
}
