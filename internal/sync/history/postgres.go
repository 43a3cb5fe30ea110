// Package history persists the append-only synchronization log.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sanctionwatch/internal/sync/models"
)

// PostgresStore writes and reads sync_history rows. Writes happen after
// the entity replace transaction has settled, so the store deliberately
// ignores any transaction carried on the context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append records one synchronization outcome.
func (s *PostgresStore) Append(ctx context.Context, entry models.HistoryEntry) error {
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_history (id, source, status, message, records_affected, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, entry.Source, entry.Status, entry.Message, nullInt(entry.RecordsAffected), createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert sync history: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, status, message, records_affected, created_at
		FROM sync_history
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sync history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var (
			entry   models.HistoryEntry
			records sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &entry.Source, &entry.Status, &entry.Message, &records, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync history row: %w", err)
		}
		if records.Valid {
			n := int(records.Int64)
			entry.RecordsAffected = &n
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync history rows: %w", err)
	}
	return entries, nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
