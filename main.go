package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"shoper/pkg/pipeline"
	"shoper/pkg/textract"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

// pipe is the shared receipt pipeline; stateless, so one instance serves all
// requests.
var pipe *pipeline.Pipeline

func main() {
	// Auto-load ./.env if present before reading vars; existing env wins.
	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)

	// Support a lightweight migrate command: `./shoper migrate`
	// It runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()

	ext, err := extractorFromEnv()
	if err != nil {
		log.Fatalf("recognizer setup: %v", err)
	}
	pipe = pipeline.New(pipeline.DefaultConfig(), ext)

	r := gin.Default()

	setupRoutes(r)

	addr := ":8081"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	r.Run(addr)
}

// extractorFromEnv picks the text recognizer backend. OCR_BACKEND=azure uses
// the Computer Vision API (needs AZURE_CS_ENDPOINT / AZURE_CS_KEY); anything
// else runs local Tesseract.
func extractorFromEnv() (textract.Extractor, error) {
	if os.Getenv("OCR_BACKEND") == "azure" {
		endpoint := os.Getenv("AZURE_CS_ENDPOINT")
		key := os.Getenv("AZURE_CS_KEY")
		if endpoint == "" || key == "" {
			return nil, fmt.Errorf("OCR_BACKEND=azure requires AZURE_CS_ENDPOINT and AZURE_CS_KEY")
		}
		return textract.NewAzure(endpoint, key), nil
	}
	return textract.NewTesseract(os.Getenv("OCR_LANG")), nil
}
