package main

import (
	"log"

	"github.com/joho/godotenv"

	"schemalens/app"
	"schemalens/internal"
	"schemalens/internal/api"
	"schemalens/internal/config"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()
	analyzer := app.NewAnalyzer(logger)
	server := api.NewServer(analyzer, cfg.Analysis, logger)

	if err := server.ListenAndServe(cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
