package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// retentionDays is the rolling window kept in the share statistics table.
const retentionDays = 30

// ShareRecord is one recorded truck share.
type ShareRecord struct {
	ID        string
	Strength  string
	Server    string
	Actor     string
	CreatedAt time.Time
}

// Stats persists share statistics in SQLite with a rolling retention
// window.
type Stats struct {
	conn *sql.DB
	path string
}

// OpenStats opens or creates the statistics database at dbPath.
func OpenStats(dbPath string) (*Stats, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite works best with a single connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	s := &Stats{conn: conn, path: dbPath}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stats) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS truck_shares (
			id         TEXT PRIMARY KEY,
			strength   TEXT NOT NULL,
			server     TEXT NOT NULL,
			actor      TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_truck_shares_created_at ON truck_shares(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Stats) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// RecordShare appends a share and drops rows older than the retention
// window in the same call, keeping the table bounded without a separate
// cleanup job.
func (s *Stats) RecordShare(strength, server, actor string) (*ShareRecord, error) {
	record := &ShareRecord{
		ID:        uuid.New().String(),
		Strength:  strength,
		Server:    server,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.conn.Exec(
		"INSERT INTO truck_shares (id, strength, server, actor, created_at) VALUES (?, ?, ?, ?, ?)",
		record.ID, record.Strength, record.Server, record.Actor, record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record share: %w", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	if _, err := s.conn.Exec("DELETE FROM truck_shares WHERE created_at < ?", cutoff); err != nil {
		return nil, fmt.Errorf("failed to purge old shares: %w", err)
	}

	return record, nil
}

// RecentShares returns up to limit shares, newest first.
func (s *Stats) RecentShares(limit int) ([]ShareRecord, error) {
	rows, err := s.conn.Query(
		"SELECT id, strength, server, actor, created_at FROM truck_shares ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer rows.Close()

	var records []ShareRecord
	for rows.Next() {
		var r ShareRecord
		if err := rows.Scan(&r.ID, &r.Strength, &r.Server, &r.Actor, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan share row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountShares returns the number of retained shares.
func (s *Stats) CountShares() (int, error) {
	var count int
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM truck_shares").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count shares: %w", err)
	}
	return count, nil
}
