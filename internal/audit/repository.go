// Package audit provides access to the apply_logs table recording every
// settings apply attempt, accepted or rejected.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ApplyLog represents one settings apply attempt against a machine.
type ApplyLog struct {
	ID         string    `json:"id"`
	Machine    string    `json:"machine"`
	Accepted   bool      `json:"accepted"`
	ErrorCount int       `json:"error_count"`
	Batch      string    `json:"batch"` // submitted batch as JSON
	CreatedAt  time.Time `json:"created_at"`
}

// Filter controls which apply logs to return.
type Filter struct {
	Machine string // optional: filter by machine name
	Limit   int    // default 50, max 200
	Offset  int    // pagination offset
}

// Default and maximum page sizes for List.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// Repository defines the interface for apply log operations.
type Repository interface {
	Create(ctx context.Context, log *ApplyLog) error
	List(ctx context.Context, filter Filter) ([]ApplyLog, error)
}

// SQLiteRepository stores apply logs in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new apply log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new apply log entry. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, log *ApplyLog) error {
	if log.ID == "" {
		log.ID = "apl-" + uuid.NewString()[:8]
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO apply_logs (id, machine, accepted, error_count, batch, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		log.ID, log.Machine, log.Accepted, log.ErrorCount, log.Batch,
		log.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting apply log: %w", err)
	}

	return nil
}

// List returns apply logs, newest first, optionally filtered by machine.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) ([]ApplyLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, machine, accepted, error_count, batch, created_at
	          FROM apply_logs`
	args := []any{}
	if filter.Machine != "" {
		query += ` WHERE machine = ?`
		args = append(args, filter.Machine)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying apply logs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	logs := []ApplyLog{}
	for rows.Next() {
		var log ApplyLog
		var createdAt string
		if err := rows.Scan(&log.ID, &log.Machine, &log.Accepted, &log.ErrorCount, &log.Batch, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning apply log: %w", err)
		}
		log.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing apply log timestamp: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating apply logs: %w", err)
	}

	return logs, nil
}
