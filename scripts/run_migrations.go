package main

import (
	"log"
	"os"

	"github.com/safar/go-sql-shop/internal/config"
	"github.com/safar/go-sql-shop/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	applied, err := database.RunMigrations(db, "migrations", os.Args[1])
	if err != nil {
		log.Fatalf("Run migrations: %v", err)
	}

	for _, filename := range applied {
		log.Printf("Ran migration: %s", filename)
	}
	log.Printf("Successfully ran %d migration(s) %s", len(applied), os.Args[1])
}
