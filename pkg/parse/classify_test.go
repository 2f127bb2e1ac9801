package parse

import (
	"testing"

	"shoper/pkg/receipt"
)

func sampleLines(texts []string) []receipt.RawTextLine {
	out := make([]receipt.RawTextLine, len(texts))
	for i, t := range texts {
		out[i] = receipt.RawTextLine{Text: t, Position: i, Confidence: 0.9}
	}
	return out
}

func TestClassifyRoleCompleteness(t *testing.T) {
	texts := []string{
		"FRESH MART",
		"123 Main Street",
		"Cashier: JANE",
		"2 x Apple 1.00 2.00",
		"Bread 1.50",
		"",
		"Sub Total 3.50",
		"TOTAL 3.50",
		"Cash 5.00",
		"Change 1.50",
		"Thank you!",
	}
	c := NewClassifier(DefaultClassifierOptions())
	got := c.Classify(sampleLines(texts))
	if len(got) != len(texts) {
		t.Fatalf("classifier dropped lines: got %d want %d", len(got), len(texts))
	}
	for i, cl := range got {
		if cl.Position != i {
			t.Fatalf("order not preserved at %d: %+v", i, cl)
		}
	}
	want := []receipt.LineRole{
		receipt.RoleHeader,
		receipt.RoleHeader,
		receipt.RoleHeader,
		receipt.RoleItem,
		receipt.RoleItem,
		receipt.RoleNoise,
		receipt.RoleSubtotal,
		receipt.RoleTotal,
		receipt.RoleFooter,
		receipt.RoleFooter,
		receipt.RoleFooter,
	}
	for i, w := range want {
		if got[i].Role != w {
			t.Fatalf("line %d %q: role %s, want %s", i, texts[i], got[i].Role, w)
		}
	}
}

func TestClassifySubtotalNotTotal(t *testing.T) {
	c := NewClassifier(DefaultClassifierOptions())
	got := c.Classify(sampleLines([]string{"Sub-Total 12.00"}))
	if got[0].Role != receipt.RoleSubtotal {
		t.Fatalf("sub-total classified as %s", got[0].Role)
	}
}

func TestClassifyTotalBeatsTax(t *testing.T) {
	// A line matching both keyword sets resolves to TOTAL.
	c := NewClassifier(DefaultClassifierOptions())
	got := c.Classify(sampleLines([]string{"Total incl. tax 12.00"}))
	if got[0].Role != receipt.RoleTotal {
		t.Fatalf("tie resolved to %s, want total", got[0].Role)
	}
}

func TestDetectAmountsLastTotalWins(t *testing.T) {
	c := NewClassifier(DefaultClassifierOptions())
	cls := c.Classify(sampleLines([]string{
		"Item A 1.00",
		"TOTAL 1.00",
		"TOTAL 2.00",
	}))
	det := c.DetectAmounts(cls)
	if det.Total == nil || *det.Total != 200 {
		t.Fatalf("expected last total 200, got %+v", det.Total)
	}
}

func TestDetectAmountsCashAndChange(t *testing.T) {
	c := NewClassifier(DefaultClassifierOptions())
	cls := c.Classify(sampleLines([]string{
		"Item A 1.00",
		"TOTAL 1.00",
		"Cash 5.00",
		"Change 4.00",
	}))
	det := c.DetectAmounts(cls)
	if det.Cash == nil || *det.Cash != 500 {
		t.Fatalf("cash: %+v", det.Cash)
	}
	if det.Change == nil || *det.Change != 400 {
		t.Fatalf("change: %+v", det.Change)
	}
}

func TestExtractHeader(t *testing.T) {
	c := NewClassifier(DefaultClassifierOptions())
	cls := c.Classify(sampleLines([]string{
		"FRESH MART",
		"Cashiersn JANE-2",
		"Bill# A-1001",
		"Apple 1.00",
	}))
	merchant, cashier, bill := ExtractHeader(cls)
	if merchant != "FRESH MART" {
		t.Fatalf("merchant = %q", merchant)
	}
	if cashier != "JANE-2" {
		t.Fatalf("cashier = %q", cashier)
	}
	if bill != "A-1001" {
		t.Fatalf("bill = %q", bill)
	}
}
