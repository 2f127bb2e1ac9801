package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var adminID sql.NullInt64
	if err := db.QueryRow(`SELECT id FROM users WHERE username='admin' LIMIT 1`).Scan(&adminID); err != nil {
		log.Fatalf("find admin: %v", err)
	}
	if !adminID.Valid {
		fmt.Println("admin user not found; nothing to cleanup")
		return
	}
	// Nullify FKs first
	res1, err := db.Exec(`UPDATE uploads SET receipt_id=NULL WHERE receipt_id IN (SELECT id FROM receipt_records WHERE user_id=$1)`, adminID.Int64)
	if err != nil {
		log.Fatalf("nullify uploads FK: %v", err)
	}
	n1, _ := res1.RowsAffected()
	// Delete admin receipt items then records
	if _, err := db.Exec(`DELETE FROM receipt_items WHERE record_id IN (SELECT id FROM receipt_records WHERE user_id=$1)`, adminID.Int64); err != nil {
		log.Fatalf("delete admin receipt items: %v", err)
	}
	res2, err := db.Exec(`DELETE FROM receipt_records WHERE user_id=$1`, adminID.Int64)
	if err != nil {
		log.Fatalf("delete admin receipts: %v", err)
	}
	n2, _ := res2.RowsAffected()
	fmt.Printf("cleanup done: uploads unlinked=%d, receipts deleted=%d\n", n1, n2)
}
