package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/acsgmao/mcp/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS incidents (
			tracking_id TEXT PRIMARY KEY,
			incident_id TEXT NOT NULL,
			priority INTEGER NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_incident ON incidents(incident_id)`,
		`CREATE TABLE IF NOT EXISTS dispatches (
			message_id TEXT PRIMARY KEY,
			capability TEXT NOT NULL,
			source_agent_id TEXT,
			outcomes TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatches_capability ON dispatches(capability, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateIncident stores a new incident tracking record.
func (s *SQLiteStore) CreateIncident(ctx context.Context, rec *domain.IncidentRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incidents (tracking_id, incident_id, priority, status, attempts, last_error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TrackingID, rec.IncidentID, rec.Priority, rec.Status, rec.Attempts, rec.LastError, rec.CreatedAt, rec.UpdatedAt)
	return err
}

// GetIncident retrieves an incident record by tracking id. Returns nil when
// the record does not exist.
func (s *SQLiteStore) GetIncident(ctx context.Context, trackingID string) (*domain.IncidentRecord, error) {
	var rec domain.IncidentRecord
	var lastError sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT tracking_id, incident_id, priority, status, attempts, last_error, created_at, updated_at
		 FROM incidents WHERE tracking_id = ?`,
		trackingID).Scan(&rec.TrackingID, &rec.IncidentID, &rec.Priority, &rec.Status, &rec.Attempts, &lastError, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastError.Valid {
		rec.LastError = lastError.String
	}
	return &rec, nil
}

// UpdateIncidentStatus records the outcome of an asynchronous forward.
func (s *SQLiteStore) UpdateIncidentStatus(ctx context.Context, trackingID string, status domain.IncidentStatus, attempts int, lastError string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE incidents SET status = ?, attempts = ?, last_error = ?, updated_at = ? WHERE tracking_id = ?`,
		status, attempts, lastError, time.Now(), trackingID)
	return err
}

// CreateDispatch stores one completed dispatch with its marshalled outcomes.
func (s *SQLiteStore) CreateDispatch(ctx context.Context, rec *domain.DispatchRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dispatches (message_id, capability, source_agent_id, outcomes, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.MessageID, rec.Capability, rec.SourceAgentID, string(rec.Outcomes), rec.CreatedAt)
	return err
}

// GetDispatch retrieves a dispatch record by message id. Returns nil when the
// record does not exist.
func (s *SQLiteStore) GetDispatch(ctx context.Context, messageID string) (*domain.DispatchRecord, error) {
	var rec domain.DispatchRecord
	var sourceAgentID, outcomes sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT message_id, capability, source_agent_id, outcomes, created_at FROM dispatches WHERE message_id = ?`,
		messageID).Scan(&rec.MessageID, &rec.Capability, &sourceAgentID, &outcomes, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sourceAgentID.Valid {
		rec.SourceAgentID = sourceAgentID.String
	}
	if outcomes.Valid {
		rec.Outcomes = []byte(outcomes.String)
	}
	return &rec, nil
}
