package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/streamnest/streamnest/config"
	"github.com/streamnest/streamnest/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	username := "demoStreamer"
	email := "demo@streamnest.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash, birthday)
		VALUES ($1, $2, $3, '1995-06-15')
		ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, username, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", id, email, username, password)

	// Every user owns exactly one channel
	if _, err := db.Exec(`
		INSERT INTO channels (user_id, title, description)
		VALUES ($1, 'Demo Channel', 'Seeded channel for local development')
		ON CONFLICT (user_id) DO NOTHING
	`, id); err != nil {
		log.Fatalf("failed to seed channel: %v", err)
	}

	key, err := helpers.GenStreamKey()
	if err != nil {
		log.Fatalf("failed to generate stream key: %v", err)
	}
	if _, err := db.Exec(`
		UPDATE channels SET stream_key = $1 WHERE user_id = $2 AND stream_key IS NULL
	`, key, id); err != nil {
		log.Fatalf("failed to set stream key: %v", err)
	}
	fmt.Println("seeded channel with stream key (printed only on first run)")
	fmt.Printf("stream key: %s\n", key)
}
