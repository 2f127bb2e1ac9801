package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"shoper/process/rescan"
)

func main() {
	dir := flag.String("dir", "public/processed", "directory of already-processed receipt images")
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB")
	minGain := flag.Float64("min-gain", 0.05, "minimum confidence improvement to accept an update")
	flag.Parse()

	_ = godotenv.Load()
	if os.Getenv("DB_DSN") == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export and retry")
		os.Exit(2)
	}

	if err := rescan.Run(*dir, *dry, *minGain); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}
