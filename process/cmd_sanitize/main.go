package main

import (
	"github.com/joho/godotenv"

	"shoper/process/sanitize"
)

func main() {
	_ = godotenv.Load()
	sanitize.Run()
}
