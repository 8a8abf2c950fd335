package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/maritime-metrics-go/internal/models"
)

// ImportBatchLog keeps the history of import runs
type ImportBatchLog interface {
	Record(ctx context.Context, batch *models.ImportBatch) error
	// List returns the most recent batches first. An empty status lists all.
	List(ctx context.Context, status string, limit, offset int) ([]models.ImportBatch, error)
}

// SQLiteImportBatchRepository handles database operations for import batches
type SQLiteImportBatchRepository struct {
	db *sql.DB
}

// NewSQLiteImportBatchRepository creates a new import batch repository
func NewSQLiteImportBatchRepository(db *sql.DB) *SQLiteImportBatchRepository {
	return &SQLiteImportBatchRepository{db: db}
}

// Record inserts a finished batch and sets its ID
func (r *SQLiteImportBatchRepository) Record(ctx context.Context, batch *models.ImportBatch) error {
	query := `
		INSERT INTO import_batches (
			batch_id, source, status, error_message, rows_read, rows_stored,
			rows_dropped, invalid, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		batch.BatchID,
		batch.Source,
		batch.Status,
		batch.ErrorMessage,
		batch.RowsRead,
		batch.RowsStored,
		batch.RowsDropped,
		batch.Invalid,
		batch.StartedAt.UTC().Format(time.RFC3339Nano),
		batch.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record import batch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	batch.ID = id
	return nil
}

// List retrieves import batches with an optional status filter
func (r *SQLiteImportBatchRepository) List(ctx context.Context, status string, limit, offset int) ([]models.ImportBatch, error) {
	query := `
		SELECT id, batch_id, source, status, error_message, rows_read, rows_stored,
			   rows_dropped, invalid, started_at, finished_at
		FROM import_batches
		WHERE 1=1
	`

	args := []interface{}{}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}
	defer rows.Close()

	batches := []models.ImportBatch{}
	for rows.Next() {
		var (
			b                   models.ImportBatch
			started, finished string
		)
		err := rows.Scan(
			&b.ID,
			&b.BatchID,
			&b.Source,
			&b.Status,
			&b.ErrorMessage,
			&b.RowsRead,
			&b.RowsStored,
			&b.RowsDropped,
			&b.Invalid,
			&started,
			&finished,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import batch: %w", err)
		}
		if b.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
		if b.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("failed to parse finished_at: %w", err)
		}
		batches = append(batches, b)
	}

	return batches, rows.Err()
}
