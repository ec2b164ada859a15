// migrate applies the SQL migrations to the configured database.
//
// Usage: go run ./cmd/migrate [migration-file...]
// With no arguments it applies migrations/001_init.sql.
package main

import (
	"context"
	"log"
	"os"

	"finops-agent/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	files := os.Args[1:]
	if len(files) == 0 {
		files = []string{"migrations/001_init.sql"}
	}

	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", file, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			log.Fatalf("Migration %s failed: %v", file, err)
		}
		log.Printf("Applied %s", file)
	}
}
