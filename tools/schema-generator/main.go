package main

import (
	"log"
	"os"

	"github.com/grovetools/autoread/config"
)

func main() {
	data, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	// Write to the config package root so go:embed picks it up
	if err := os.WriteFile("config/autoread.embedded.schema.json", data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated schema at config/autoread.embedded.schema.json")
}
