package receipt

import (
	"strings"
	"testing"
)

func matchRecon(total int64) Reconciliation {
	return Reconciliation{ComputedSubtotal: total, DetectedTotal: &total, Status: StatusMatch}
}

func TestAssembleCleanReceiptScoresFull(t *testing.T) {
	items := []LineItem{
		{Description: "Apple", Quantity: 2, UnitPrice: 100, LineTotal: 200},
		{Description: "Bread", Quantity: 1, UnitPrice: 150, LineTotal: 150},
	}
	r := Assemble(items, matchRecon(350), Meta{TotalLines: 8, Rectified: true})
	if r.Confidence < 0.99 {
		t.Fatalf("clean receipt confidence = %.2f, want ~1.0", r.Confidence)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", r.Warnings)
	}
}

func TestAssembleConfidenceOrdering(t *testing.T) {
	items := []LineItem{{Description: "Apple", Quantity: 1, UnitPrice: 100, LineTotal: 100}}
	meta := Meta{TotalLines: 4, Rectified: true}

	total := int64(100)
	match := Assemble(items, Reconciliation{ComputedSubtotal: 100, DetectedTotal: &total, Status: StatusMatch}, meta)
	bad := int64(150)
	mismatch := Assemble(items, Reconciliation{ComputedSubtotal: 100, DetectedTotal: &bad, Discrepancy: 50, Status: StatusMismatch}, meta)
	unverif := Assemble(items, Reconciliation{ComputedSubtotal: 100, Status: StatusUnverifiable}, meta)

	if !(match.Confidence > mismatch.Confidence && mismatch.Confidence > unverif.Confidence) {
		t.Fatalf("confidence ordering broken: match=%.2f mismatch=%.2f unverifiable=%.2f",
			match.Confidence, mismatch.Confidence, unverif.Confidence)
	}
}

func TestAssembleUnrectifiedPenalty(t *testing.T) {
	items := []LineItem{{Description: "Apple", Quantity: 1, UnitPrice: 100, LineTotal: 100}}
	flat := Assemble(items, matchRecon(100), Meta{TotalLines: 4, Rectified: true})
	skew := Assemble(items, matchRecon(100), Meta{TotalLines: 4, Rectified: false})
	if skew.Confidence >= flat.Confidence {
		t.Fatalf("unrectified receipt not penalized: %.2f vs %.2f", skew.Confidence, flat.Confidence)
	}
	if skew.Rectified {
		t.Fatal("rectified flag should be carried through")
	}
}

func TestAssembleWarnings(t *testing.T) {
	items := []LineItem{
		{Description: "Soda", Quantity: 3, UnitPrice: 167, LineTotal: 500, Inconsistent: true},
	}
	bad := int64(700)
	r := Assemble(items, Reconciliation{ComputedSubtotal: 500, DetectedTotal: &bad, Discrepancy: 200, Status: StatusMismatch},
		Meta{TotalLines: 3, Rectified: true, Warnings: []string{"orphan amount on line 2"}})

	want := []string{"orphan amount", "Soda", "mismatch"}
	joined := strings.Join(r.Warnings, "\n")
	for _, frag := range want {
		if !strings.Contains(joined, frag) {
			t.Fatalf("warnings %v missing %q", r.Warnings, frag)
		}
	}
}

func TestAssembleNoTotalWarns(t *testing.T) {
	r := Assemble(nil, Reconciliation{Status: StatusUnverifiable}, Meta{TotalLines: 2, Rectified: true})
	if len(r.Warnings) == 0 || !strings.Contains(r.Warnings[0], "no total") {
		t.Fatalf("expected missing-total warning, got %v", r.Warnings)
	}
}

func TestFormatMinor(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{1050, "10.50"},
		{0, "0.00"},
		{7, "0.07"},
		{-5, "-0.05"},
		{123456, "1234.56"},
	}
	for _, c := range cases {
		if got := FormatMinor(c.in); got != c.want {
			t.Errorf("FormatMinor(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSummaryLayout(t *testing.T) {
	total := int64(350)
	r := Receipt{
		Merchant: "Mega Mart",
		Items: []LineItem{
			{Description: "Apple", Quantity: 2, UnitPrice: 100, LineTotal: 200},
		},
		Reconciliation: Reconciliation{ComputedSubtotal: 200, DetectedTotal: &total, Status: StatusMismatch},
	}
	s := r.Summary()
	for _, frag := range []string{"Mega Mart", "Apple", "2.00", "Total (detected): 3.50", "mismatch"} {
		if !strings.Contains(s, frag) {
			t.Fatalf("summary missing %q:\n%s", frag, s)
		}
	}
}
