// Package store persists contact submissions and their notification outcome
// in a local SQLite database, keyed by generated document IDs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is a submission plus its classification and lifecycle markers. The
// pipeline is the only writer: created once, updated at most twice (after
// classification, after a send attempt), never deleted here.
type Record struct {
	ID        string
	Nombre    string
	Empresa   string
	Email     string
	Telefono  string
	Servicio  string
	Mensaje   string
	Origen    string
	Status    string
	Score     int
	Reasons   []string
	CreatedAt time.Time
	// ProcessedAt is set once, at classification time.
	ProcessedAt time.Time
	// NotifiedAt stays null until a notification succeeds; its presence is
	// the idempotency guard.
	NotifiedAt   sql.NullTime
	MailSent     bool
	MailID       string
	MailError    string
	MailFailedAt sql.NullTime
}

type Stats struct {
	Total      int
	Leads      int
	Suspicious int
	JobSeekers int
	Spam       int
	Notified   int
}

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS contact_messages (
		id TEXT PRIMARY KEY,
		nombre TEXT NOT NULL,
		empresa TEXT,
		email TEXT NOT NULL,
		telefono TEXT NOT NULL,
		servicio TEXT,
		mensaje TEXT NOT NULL,
		origen TEXT,
		status TEXT NOT NULL,
		score INTEGER NOT NULL,
		reasons TEXT,
		created_at DATETIME NOT NULL,
		processed_at DATETIME NOT NULL,
		notified_at DATETIME,
		mail_sent INTEGER DEFAULT 0,
		mail_id TEXT,
		mail_error TEXT,
		mail_failed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_cm_status ON contact_messages(status);
	CREATE INDEX IF NOT EXISTS idx_cm_created_at ON contact_messages(created_at);
	CREATE INDEX IF NOT EXISTS idx_cm_notified_at ON contact_messages(notified_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Create inserts a new record, generating its document ID.
func (s *Store) Create(ctx context.Context, record *Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if record.ProcessedAt.IsZero() {
		record.ProcessedAt = time.Now()
	}

	reasons, err := json.Marshal(record.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}

	query := `
	INSERT INTO contact_messages (id, nombre, empresa, email, telefono, servicio, mensaje, origen,
		status, score, reasons, created_at, processed_at, notified_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.Nombre, record.Empresa, record.Email, record.Telefono,
		record.Servicio, record.Mensaje, record.Origen,
		record.Status, record.Score, string(reasons),
		record.CreatedAt, record.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// MarkNotified sets the notified marker and clears any prior send error.
func (s *Store) MarkNotified(ctx context.Context, id, mailID string) error {
	query := `UPDATE contact_messages
		SET notified_at = ?, mail_sent = 1, mail_id = ?, mail_error = NULL, mail_failed_at = NULL
		WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, time.Now(), mailID, id)
	if err != nil {
		return fmt.Errorf("failed to mark record notified: %w", err)
	}
	return nil
}

// RecordMailError stores the outcome of a failed send attempt. The notified
// marker is left untouched so a later redrive can retry.
func (s *Store) RecordMailError(ctx context.Context, id, errMsg string) error {
	query := `UPDATE contact_messages
		SET mail_sent = 0, mail_error = ?, mail_failed_at = ?
		WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, errMsg, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to record mail error: %w", err)
	}
	return nil
}

const recordColumns = `id, nombre, empresa, email, telefono, servicio, mensaje, origen,
	status, score, reasons, created_at, processed_at, notified_at, mail_sent, mail_id, mail_error, mail_failed_at`

// scanRecord handles nullable columns when scanning a row
func scanRecord(scanner interface{ Scan(...any) error }) (*Record, error) {
	var r Record
	var empresa, servicio, origen, reasons, mailID, mailError sql.NullString
	var mailSent sql.NullInt64

	err := scanner.Scan(&r.ID, &r.Nombre, &empresa, &r.Email, &r.Telefono, &servicio, &r.Mensaje, &origen,
		&r.Status, &r.Score, &reasons, &r.CreatedAt, &r.ProcessedAt, &r.NotifiedAt,
		&mailSent, &mailID, &mailError, &r.MailFailedAt)
	if err != nil {
		return nil, err
	}

	r.Empresa = empresa.String
	r.Servicio = servicio.String
	r.Origen = origen.String
	r.MailSent = mailSent.Int64 == 1
	r.MailID = mailID.String
	r.MailError = mailError.String
	if reasons.Valid && reasons.String != "" {
		if err := json.Unmarshal([]byte(reasons.String), &r.Reasons); err != nil {
			return nil, fmt.Errorf("failed to decode reasons: %w", err)
		}
	}
	return &r, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM contact_messages WHERE id = ?`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	return record, nil
}

func (s *Store) GetRecent(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM contact_messages ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// GetUnnotifiedLeads returns qualifying records whose notification never
// succeeded but was attempted, for the operator-driven redrive.
func (s *Store) GetUnnotifiedLeads(ctx context.Context, status string, limit int) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM contact_messages
		WHERE status = ? AND notified_at IS NULL AND mail_error IS NOT NULL AND mail_error != ''
		ORDER BY created_at ASC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unnotified leads: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	query := `SELECT COUNT(*),
		SUM(CASE WHEN status='consulta_real' THEN 1 ELSE 0 END),
		SUM(CASE WHEN status='sospechoso' THEN 1 ELSE 0 END),
		SUM(CASE WHEN status='busca_trabajo' THEN 1 ELSE 0 END),
		SUM(CASE WHEN status='spam' THEN 1 ELSE 0 END),
		SUM(CASE WHEN notified_at IS NOT NULL THEN 1 ELSE 0 END)
		FROM contact_messages`

	var stats Stats
	var leads, suspicious, jobs, spam, notified sql.NullInt64
	err := s.db.QueryRowContext(ctx, query).Scan(&stats.Total, &leads, &suspicious, &jobs, &spam, &notified)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	stats.Leads = int(leads.Int64)
	stats.Suspicious = int(suspicious.Int64)
	stats.JobSeekers = int(jobs.Int64)
	stats.Spam = int(spam.Int64)
	stats.Notified = int(notified.Int64)
	return stats, nil
}

func (s *Store) Close() error { return s.db.Close() }
