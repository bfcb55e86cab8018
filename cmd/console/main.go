package main

import (
	"log"

	"github.com/avc/frete-console/internal/app"
)

func main() {
	application, err := app.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize console: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Failed to run console: %v", err)
	}
}
