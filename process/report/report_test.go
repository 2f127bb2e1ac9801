package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"shoper/models"
)

func TestWriteXLSX(t *testing.T) {
	total := int64(350)
	rows := []models.ReceiptRecord{
		{
			ID:               1,
			FileName:         "r1.jpg",
			Merchant:         "Mega Mart",
			Date:             time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
			Status:           "match",
			Confidence:       0.95,
			ComputedSubtotal: 350,
			DetectedTotal:    &total,
			Items: []models.ReceiptItem{
				{Desc: "Apple", Quantity: 2, UnitPrice: 100, LineTotal: 200},
				{Desc: "Bread", Quantity: 1, UnitPrice: 150, LineTotal: 150},
			},
		},
		{
			ID:               2,
			FileName:         "r2.jpg",
			Merchant:         "Corner Shop",
			Date:             time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC),
			Status:           "unverifiable",
			Confidence:       0.40,
			ComputedSubtotal: 500,
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := writeXLSX(path, "2026-08", rows); err != nil {
		t.Fatalf("writeXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Receipts", "C2")
	if err != nil || got != "Mega Mart" {
		t.Fatalf("Receipts!C2 = %q, err %v", got, err)
	}
	got, _ = f.GetCellValue("Receipts", "E3")
	if got != "unverifiable" {
		t.Fatalf("Receipts!E3 = %q", got)
	}
	// Detected total column stays empty when nothing was detected.
	got, _ = f.GetCellValue("Receipts", "H3")
	if got != "" {
		t.Fatalf("Receipts!H3 = %q, want empty", got)
	}

	got, _ = f.GetCellValue("Items", "B2")
	if got != "Apple" {
		t.Fatalf("Items!B2 = %q", got)
	}
	itemRows, err := f.GetRows("Items")
	if err != nil {
		t.Fatalf("read Items sheet: %v", err)
	}
	if len(itemRows) != 3 { // header + 2 items
		t.Fatalf("Items rows = %d, want 3", len(itemRows))
	}
}
