package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"filevault/internal/config"
)

func main() {
	_ = godotenv.Load()

	// Same prefix resolution as the server
	cfg := config.Load()
	if cfg.SupabaseDBURL == "" {
		log.Fatal("SUPABASE_DB_URL environment variable is required")
	}
	if cfg.Environment == "prod" {
		log.Fatal("refusing to drop tables in prod")
	}

	db, err := sql.Open("pgx", cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	dropSQL := fmt.Sprintf(`
		DROP TABLE IF EXISTS %[1]sfiles CASCADE;
		DROP FUNCTION IF EXISTS %[1]sfiles_freeze_owner();
	`, cfg.TablePrefix)

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Printf("Files table dropped (prefix: %q)\n", cfg.TablePrefix)
}
