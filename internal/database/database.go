package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		id_visible INTEGER NOT NULL DEFAULT 0,
		username TEXT UNIQUE,
		mail TEXT UNIQUE,
		password_hash TEXT,
		name TEXT,
		last_name TEXT,
		root INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		deleted INTEGER NOT NULL DEFAULT 0,
		otp INTEGER NOT NULL DEFAULT 0,
		created_by TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS cities (
		id TEXT NOT NULL PRIMARY KEY,
		id_visible INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		deleted INTEGER NOT NULL DEFAULT 0,
		upload_user_id TEXT REFERENCES users(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS neighborhoods (
		id TEXT NOT NULL PRIMARY KEY,
		id_visible INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		city_id TEXT NOT NULL REFERENCES cities(id),
		active INTEGER NOT NULL DEFAULT 1,
		deleted INTEGER NOT NULL DEFAULT 0,
		upload_user_id TEXT REFERENCES users(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		deleted_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS user_cities (
		user_id TEXT NOT NULL REFERENCES users(id),
		city_id TEXT NOT NULL REFERENCES cities(id),
		PRIMARY KEY (user_id, city_id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT,
		actor_id TEXT,
		entity_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
