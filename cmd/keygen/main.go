package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/rations-api-go/pkg/auth"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env from the project root or the current directory
	_ = godotenv.Load("../.env")
	_ = godotenv.Load(".env")

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run keygen.go <userID>")
		os.Exit(1)
	}

	userID := os.Args[1]
	if os.Getenv("API_MASTER_SECRET") == "" {
		fmt.Println("Error: API_MASTER_SECRET not found in .env")
		os.Exit(1)
	}

	apiKey := auth.GenerateHMACKey(userID)
	fmt.Printf("Generated Key for %s:\n%s\n", userID, apiKey)
	fmt.Println("Send it as 'Authorization: Bearer <key>' to the solver endpoints")
}
