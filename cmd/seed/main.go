package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/citygate/csrms/pkg/helpers"

	"github.com/citygate/csrms/config"
)

// Seeds the first administrator so a fresh deployment has someone who can
// work the request queue. Idempotent; safe to re-run.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := getenv("SEED_ADMIN_EMAIL", "admin@csrms.local")
	password := getenv("SEED_ADMIN_PASSWORD", "changeme123")
	name := getenv("SEED_ADMIN_NAME", "System Administrator")

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (user_id, email, password_hash, full_name, role, is_verified)
		VALUES ($1, $2, $3, $4, 'Administrator', TRUE)
		ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name
		RETURNING id
	`, helpers.NewCode("USR"), email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed administrator: %v", err)
	}
	fmt.Printf("seeded administrator: id=%s email=%s\n", id, email)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
