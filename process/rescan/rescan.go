package rescan

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"shoper/models"
	"shoper/pkg/pipeline"
	"shoper/pkg/textract"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

// Run re-runs the structuring pipeline over image files in dir and updates
// the matching ReceiptRecord when the new result is more confident. If dry
// is true, only prints proposed changes.
func Run(dir string, dry bool, minGain float64) error {
	gdb := mustDBFromEnv()
	pipe := pipeline.New(pipeline.DefaultConfig(), textract.NewTesseract(os.Getenv("OCR_LANG")))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		default:
			continue
		}
		full := filepath.Join(dir, name)

		// find the record for this filename (unique per user)
		var rec models.ReceiptRecord
		if err := gdb.Where("file_name = ?", name).First(&rec).Error; err != nil {
			log.Printf("no record found for %s: %v", name, err)
			continue
		}

		fresh, _, err := pipe.RunFile(context.Background(), full)
		if err != nil {
			log.Printf("pipeline error %s: %v", name, err)
			continue
		}
		if fresh.Confidence < rec.Confidence+minGain {
			log.Printf("skip %s: confidence %.2f -> %.2f (min gain %.2f)", name, rec.Confidence, fresh.Confidence, minGain)
			continue
		}

		if dry {
			log.Printf("would update %s: %d items, status %s -> %s, confidence %.2f -> %.2f",
				name, len(fresh.Items), rec.Status, fresh.Reconciliation.Status, rec.Confidence, fresh.Confidence)
			continue
		}

		// replace items wholesale; the record keys stay stable
		if err := gdb.Where("record_id = ?", rec.ID).Delete(&models.ReceiptItem{}).Error; err != nil {
			log.Printf("clear items %s: %v", name, err)
			continue
		}
		rec.Merchant = fresh.Merchant
		rec.Cashier = fresh.Cashier
		rec.BillNo = fresh.BillNo
		rec.ComputedSubtotal = fresh.Reconciliation.ComputedSubtotal
		rec.DetectedSubtotal = fresh.Reconciliation.DetectedSubtotal
		rec.DetectedTax = fresh.Reconciliation.DetectedTax
		rec.DetectedTotal = fresh.Reconciliation.DetectedTotal
		rec.Cash = fresh.Cash
		rec.Change = fresh.Change
		rec.Discrepancy = fresh.Reconciliation.Discrepancy
		rec.Status = fresh.Reconciliation.Status.String()
		rec.Confidence = fresh.Confidence
		rec.Rectified = fresh.Rectified
		rec.Warnings = strings.Join(fresh.Warnings, "\n")
		for i, it := range fresh.Items {
			rec.Items = append(rec.Items, models.ReceiptItem{
				RecordID:     rec.ID,
				Position:     i,
				Desc:         it.Description,
				Quantity:     it.Quantity,
				UnitPrice:    it.UnitPrice,
				LineTotal:    it.LineTotal,
				Inconsistent: it.Inconsistent,
			})
		}
		if err := gdb.Session(&gorm.Session{FullSaveAssociations: true}).Save(&rec).Error; err != nil {
			log.Printf("update %s: %v", name, err)
			continue
		}
		log.Printf("updated %s: %d items, status=%s confidence=%.2f", name, len(fresh.Items), rec.Status, rec.Confidence)
	}
	return nil
}
