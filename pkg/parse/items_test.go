package parse

import (
	"testing"

	"shoper/pkg/receipt"
)

func classifyAll(t *testing.T, texts []string) []receipt.ClassifiedLine {
	t.Helper()
	c := NewClassifier(DefaultClassifierOptions())
	return c.Classify(sampleLines(texts))
}

func TestParseLineQuantityUnitTotal(t *testing.T) {
	p := NewItemParser(DefaultItemOptions())
	item, ok := p.ParseLine("2 x Apple 1.00 2.00")
	if !ok {
		t.Fatal("expected parse")
	}
	if item.Description != "Apple" {
		t.Fatalf("description = %q", item.Description)
	}
	if item.Quantity != 2 || item.UnitPrice != 100 || item.LineTotal != 200 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Inconsistent {
		t.Fatal("consistent item flagged")
	}
}

func TestParseLineSingleAmount(t *testing.T) {
	p := NewItemParser(DefaultItemOptions())
	item, ok := p.ParseLine("Bread 1.50")
	if !ok {
		t.Fatal("expected parse")
	}
	if item.Description != "Bread" || item.Quantity != 1 || item.UnitPrice != 150 || item.LineTotal != 150 {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestParseLineMiddleQuantity(t *testing.T) {
	// "description qty price" layout.
	p := NewItemParser(DefaultItemOptions())
	item, ok := p.ParseLine("Fried Chicken 2 1000")
	if !ok {
		t.Fatal("expected parse")
	}
	if item.Description != "Fried Chicken" {
		t.Fatalf("description = %q", item.Description)
	}
	if item.Quantity != 2 || item.LineTotal != 100000 || item.UnitPrice != 50000 {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestParseLineInconsistentKeepsTotal(t *testing.T) {
	p := NewItemParser(DefaultItemOptions())
	item, ok := p.ParseLine("3 x Soda 1.00 5.00")
	if !ok {
		t.Fatal("expected parse")
	}
	if !item.Inconsistent {
		t.Fatal("expected inconsistency flag")
	}
	if item.LineTotal != 500 {
		t.Fatalf("line total must stay authoritative: %+v", item)
	}
	// Unit price recomputed from the trusted total.
	if item.UnitPrice != 167 {
		t.Fatalf("unit price = %d, want 167", item.UnitPrice)
	}
}

func TestParseLineNoAmountDefers(t *testing.T) {
	p := NewItemParser(DefaultItemOptions())
	if _, ok := p.ParseLine("Organic wholegrain"); ok {
		t.Fatal("amount-less line must defer to merge")
	}
}

func TestParseAllMergesWrappedDescription(t *testing.T) {
	p := NewItemParser(DefaultItemOptions())
	items, warnings := p.ParseAll(classifyAll(t, []string{
		"Apple 1.00",
		"Organic wholegrain",
		"sourdough 4.50",
		"TOTAL 5.50",
	}))
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
	if items[1].Description != "Organic wholegrain sourdough" {
		t.Fatalf("merged description = %q", items[1].Description)
	}
	if items[1].LineTotal != 450 {
		t.Fatalf("merged total = %d", items[1].LineTotal)
	}
}

func TestParseAllDoesNotMergeAcrossRoles(t *testing.T) {
	p := NewItemParser(DefaultItemOptions())
	items, warnings := p.ParseAll(classifyAll(t, []string{
		"Apple 1.00",
		"Organic wholegrain",
		"TOTAL 1.00",
		"Mints 0.50",
	}))
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
	if items[1].Description != "Mints" {
		t.Fatalf("pending description leaked across the total line: %+v", items[1])
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for the orphaned description")
	}
}
