package main

import (
	"fmt"
	"os"

	"github.com/learnhub/backend/config"
	"github.com/learnhub/backend/internal/database"
	"github.com/learnhub/backend/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/migrate/main.go [up|down|status]")
		os.Exit(1)
	}

	command := os.Args[1]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	switch command {
	case "up":
		log.Info("running migrations")
		if err := database.RunMigrations(db.DB); err != nil {
			log.Fatal("migration failed", "error", err)
		}
		log.Info("migrations completed successfully")

	case "status":
		showMigrationStatus(db, log)

	case "down":
		version, err := database.Rollback(db.DB)
		if err != nil {
			log.Fatal("rollback failed", "error", err)
		}
		if version == 0 {
			log.Info("nothing to roll back")
			return
		}
		log.Info("rolled back migration", "version", version)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Available commands: up, down, status")
		os.Exit(1)
	}
}

func showMigrationStatus(db *database.DB, log *logger.Logger) {
	current, err := database.CurrentVersion(db.DB)
	if err != nil {
		log.Error("failed to read migration version", "error", err)
		return
	}

	rows, err := db.Query("SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		log.Error("failed to list migrations", "error", err)
		return
	}
	defer rows.Close()

	fmt.Println("\nApplied Migrations:")
	fmt.Println("-------------------")
	for rows.Next() {
		var version int
		var appliedAt string
		if err := rows.Scan(&version, &appliedAt); err != nil {
			log.Warn("error scanning row", "error", err)
			continue
		}
		fmt.Printf("Version %d - Applied at: %s\n", version, appliedAt)
	}

	pending := database.Pending(current)
	fmt.Printf("\nPending: %d\n", len(pending))
	for _, m := range pending {
		fmt.Printf("Version %d\n", m.Version)
	}
}
