package services

import (
	"time"
	"tradecal/database"

	"github.com/jmoiron/sqlx"
)

// TestDB creates an isolated in-memory SQLite database with the full schema
// applied. The pool is pinned to a single connection because every SQLite
// :memory: connection is its own database.
// Returns nil if the database cannot be created (tests should fail fast).
func TestDB() *sqlx.DB {
	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(database.Schema); err != nil {
		db.Close()
		return nil
	}

	return db
}

// TestUser inserts a minimal local-account user and returns its id.
func TestUser(db *sqlx.DB, email string) (int64, error) {
	now := time.Now()
	hash := "x"
	result, err := db.Exec(
		`INSERT INTO users (email, nickname, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		email, "tester", hash, now, now,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
