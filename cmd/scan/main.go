package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/joho/godotenv"

	"shoper/pkg/imgproc"
	"shoper/pkg/pipeline"
	"shoper/pkg/textract"
)

// Scans a single receipt image, prints the structured result and optionally
// saves the JSON record plus intermediate pipeline images for debugging.
func main() {
	backend := flag.String("backend", "tesseract", "text recognizer: tesseract or azure")
	lang := flag.String("lang", "", "tesseract language (default eng)")
	threshold := flag.String("threshold", "adaptive", "binarization: adaptive or otsu")
	timeout := flag.Duration("timeout", 30*time.Second, "recognition deadline")
	jsonOut := flag.String("json", "", "write the structured receipt JSON to this path ('-' for stdout)")
	stepsDir := flag.String("save-steps", "", "save intermediate pipeline images into this directory")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scan [flags] <image>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	_ = godotenv.Load()

	cfg := pipeline.DefaultConfig()
	cfg.ExtractTimeout = *timeout
	if *threshold == "otsu" {
		cfg.Normalize.Threshold = imgproc.ThresholdOtsu
	}
	if *stepsDir != "" {
		cfg.Normalize.KeepSteps = true
	}

	var ext textract.Extractor
	switch *backend {
	case "azure":
		endpoint := os.Getenv("AZURE_CS_ENDPOINT")
		key := os.Getenv("AZURE_CS_KEY")
		if endpoint == "" || key == "" {
			log.Fatal("azure backend requires AZURE_CS_ENDPOINT and AZURE_CS_KEY")
		}
		ext = textract.NewAzure(endpoint, key)
	default:
		ext = textract.NewTesseract(*lang)
	}

	rec, norm, err := pipeline.New(cfg, ext).RunFile(context.Background(), path)
	if err != nil {
		log.Fatalf("scan %s: %v", path, err)
	}

	fmt.Print(rec.Summary())

	if *stepsDir != "" && norm != nil {
		if err := os.MkdirAll(*stepsDir, 0o755); err != nil {
			log.Fatalf("mkdir %s: %v", *stepsDir, err)
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for tag, img := range norm.Steps {
			out := filepath.Join(*stepsDir, fmt.Sprintf("%s.%s.png", base, tag))
			if err := imaging.Save(img, out); err != nil {
				log.Printf("save step %s: %v", tag, err)
			}
		}
	}

	if *jsonOut != "" {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			log.Fatalf("marshal: %v", err)
		}
		if *jsonOut == "-" {
			fmt.Println(string(data))
		} else if err := os.WriteFile(*jsonOut, append(data, '\n'), 0o644); err != nil {
			log.Fatalf("write %s: %v", *jsonOut, err)
		}
	}
}
