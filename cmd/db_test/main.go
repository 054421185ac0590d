package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-easyapply-automation/internal/config"
	"go-easyapply-automation/internal/database"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set. Please check your .env file.")
	}

	fmt.Println("Attempting to connect to PostgreSQL...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to the database: %v", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Schema check failed: %v", err)
	}
	fmt.Println("✅ Connected, application_records table is ready")

	counts, err := repo.CountByOutcome(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		log.Fatalf("❌ Query failed: %v", err)
	}
	fmt.Println("\nLast 24h by outcome:")
	for outcome, n := range counts {
		fmt.Printf("  %-10s %d\n", outcome, n)
	}

	recent, err := repo.ListApplications(ctx, 5)
	if err != nil {
		log.Fatalf("❌ Query failed: %v", err)
	}
	fmt.Println("\nMost recent applications:")
	for _, rec := range recent {
		fmt.Printf("  %s  %-10s %s (%s)\n", rec.Timestamp.Format(time.DateTime), rec.Outcome, rec.Company, rec.JobID)
	}
}
