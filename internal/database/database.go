package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "linguloop_user")
	password := getEnv("DB_PASSWORD", "linguloop_password")
	dbname := getEnv("DB_NAME", "linguloop")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS transcript_loops (
		id              TEXT PRIMARY KEY,
		video_title     TEXT NOT NULL,
		start_time      DOUBLE PRECISION NOT NULL,
		end_time        DOUBLE PRECISION NOT NULL,
		transcript_text TEXT NOT NULL,
		segments        JSONB NOT NULL DEFAULT '[]',
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS question_sets (
		id          BIGSERIAL PRIMARY KEY,
		session_id  TEXT NOT NULL,
		difficulty  VARCHAR(10) NOT NULL,
		questions   JSONB NOT NULL DEFAULT '[]',
		share_token TEXT NOT NULL,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(session_id, difficulty)
	);

	CREATE INDEX IF NOT EXISTS idx_question_sets_session ON question_sets(session_id);
	CREATE INDEX IF NOT EXISTS idx_question_sets_token ON question_sets(share_token);

	CREATE TABLE IF NOT EXISTS session_presets (
		session_id   TEXT PRIMARY KEY,
		preset_id    TEXT NOT NULL,
		name         TEXT NOT NULL,
		easy_count   INT NOT NULL DEFAULT 0,
		medium_count INT NOT NULL DEFAULT 0,
		hard_count   INT NOT NULL DEFAULT 0,
		created_at   TIMESTAMP WITH TIME ZONE NOT NULL
	);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
