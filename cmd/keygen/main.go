package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/crew-planner-api/pkg/auth"
	"github.com/arnavshah/crew-planner-api/pkg/config"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: keygen <clubID>")
		os.Exit(1)
	}
	if cfg.APIMasterSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: API_MASTER_SECRET not set")
		os.Exit(1)
	}

	auth.SetSecrets(cfg.JWTSecret, cfg.APIMasterSecret)
	clubID := os.Args[1]
	fmt.Printf("Generated key for %s:\n%s\n", clubID, auth.GenerateHMACKey(clubID))
}
