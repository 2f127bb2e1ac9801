package report

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"shoper/models"
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

// RunReport prints a month-bounded spend report for username (month in
// YYYY-MM), optionally lists matching receipt rows and optionally writes an
// XLSX workbook to xlsxPath.
func RunReport(username, month string, list bool, xlsxPath string) {
	gdb := mustDBFromEnv()

	var user models.User
	if err := gdb.Where("username = ?", username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	t, err := time.Parse("2006-01", month)
	if err != nil {
		log.Fatalf("invalid month format, expected YYYY-MM: %v", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var total sql.NullFloat64
	var cnt int64
	if err := gdb.Raw(`SELECT COALESCE(SUM(COALESCE(detected_total, computed_subtotal)),0) AS total, COUNT(*) AS cnt
		FROM receipt_records WHERE user_id = ? AND date >= ? AND date < ?`, user.ID, start, end).Row().Scan(&total, &cnt); err != nil {
		log.Fatalf("query failed: %v", err)
	}

	fmt.Printf("Report for user=%s month=%s (UTC):\n", user.Username, month)
	fmt.Printf("  receipts=%d total_amount=%.2f\n", cnt, total.Float64/100)

	var rows []models.ReceiptRecord
	if list || xlsxPath != "" {
		if err := gdb.Preload("Items").Where("user_id = ? AND date >= ? AND date < ?", user.ID, start, end).Order("id").Find(&rows).Error; err != nil {
			log.Fatalf("fetch rows failed: %v", err)
		}
	}
	if list {
		for _, r := range rows {
			amt := r.ComputedSubtotal
			if r.DetectedTotal != nil {
				amt = *r.DetectedTotal
			}
			fmt.Printf("%d|%s|%s|%d|%s|%s\n", r.ID, r.FileName, r.Merchant, amt, r.Status, r.Date.Format(time.RFC3339))
		}
	}
	if xlsxPath != "" {
		if err := writeXLSX(xlsxPath, month, rows); err != nil {
			log.Fatalf("write xlsx: %v", err)
		}
		fmt.Printf("  wrote %s\n", xlsxPath)
	}
}

// writeXLSX renders one Receipts sheet plus an Items sheet for drill-down.
func writeXLSX(path, month string, rows []models.ReceiptRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	setHeaders := func(sheet string, headers []string) error {
		if index, _ := f.GetSheetIndex(sheet); index == -1 {
			if _, err := f.NewSheet(sheet); err != nil {
				return err
			}
		}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(sheet, cell, h)
		}
		return nil
	}

	const recSheet = "Receipts"
	if err := setHeaders(recSheet, []string{
		"ID", "File", "Merchant", "Date", "Status", "Confidence",
		"Computed Subtotal", "Detected Total", "Discrepancy",
	}); err != nil {
		return err
	}
	row := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(recSheet, cell, v)
		}
		write(1, r.ID)
		write(2, r.FileName)
		write(3, r.Merchant)
		write(4, r.Date.Format("2006-01-02"))
		write(5, r.Status)
		write(6, r.Confidence)
		write(7, float64(r.ComputedSubtotal)/100)
		if r.DetectedTotal != nil {
			write(8, float64(*r.DetectedTotal)/100)
		}
		write(9, float64(r.Discrepancy)/100)
		row++
	}

	const itemSheet = "Items"
	if err := setHeaders(itemSheet, []string{
		"Receipt ID", "Description", "Quantity", "Unit Price", "Line Total", "Inconsistent",
	}); err != nil {
		return err
	}
	row = 2
	for _, r := range rows {
		for _, it := range r.Items {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(itemSheet, cell, v)
			}
			write(1, r.ID)
			write(2, it.Desc)
			write(3, it.Quantity)
			write(4, float64(it.UnitPrice)/100)
			write(5, float64(it.LineTotal)/100)
			write(6, it.Inconsistent)
			row++
		}
	}

	idx, _ := f.GetSheetIndex(recSheet)
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	return f.SaveAs(path)
}
