package main

import (
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/nurtura-health/nurtura-backend/internal/config"
	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/services"
)

func main() {
	apply := flag.Bool("apply", false, "apply expirations instead of reporting them")
	window := flag.Duration("window", 720*time.Hour, "warning window for upcoming expirations")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	mode := "dry-run"
	if *apply {
		mode = "apply"
	}
	log.Printf("Running verification expiry scan (%s, window %s)", mode, *window)

	result, err := services.RunExpiryScan(database.PostgresDB, *window, *apply)
	if err != nil {
		log.Fatal("Expiry scan failed:", err)
	}

	log.Printf("Psychologists expired: %d, expiring within window: %d",
		result.PsychologistsExpired, result.PsychologistsExpiring)
	log.Printf("Credentials expired: %d, expiring within window: %d",
		result.CredentialsExpired, result.CredentialsExpiring)
	if result.Failures > 0 {
		log.Printf("⚠️  %d rows failed and were skipped", result.Failures)
	}
	if !*apply {
		log.Println("Dry run only. Re-run with --apply to write changes")
	}
}
