package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jengzang/maritime-metrics-go/internal/models"
)

// importBatchEntity is the GORM model for the import_batches table
type importBatchEntity struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BatchID      string    `gorm:"column:batch_id;not null;uniqueIndex"`
	Source       string    `gorm:"column:source;not null;default:''"`
	Status       string    `gorm:"column:status;not null;index:idx_import_batches_status,priority:1"`
	ErrorMessage string    `gorm:"column:error_message;not null;default:''"`
	RowsRead     int       `gorm:"column:rows_read;not null"`
	RowsStored   int       `gorm:"column:rows_stored;not null"`
	RowsDropped  int       `gorm:"column:rows_dropped;not null"`
	Invalid      int       `gorm:"column:invalid;not null"`
	StartedAt    time.Time `gorm:"column:started_at;not null"`
	FinishedAt   time.Time `gorm:"column:finished_at;not null"`
}

// TableName ensures GORM uses the shared table name
func (importBatchEntity) TableName() string {
	return "import_batches"
}

// GormImportBatchRepository is a PostgreSQL backed import history
type GormImportBatchRepository struct {
	db *gorm.DB
}

// NewGormImportBatchRepository creates an import history over an open GORM connection
func NewGormImportBatchRepository(db *gorm.DB) *GormImportBatchRepository {
	return &GormImportBatchRepository{db: db}
}

// Record inserts a finished batch and sets its ID
func (r *GormImportBatchRepository) Record(ctx context.Context, batch *models.ImportBatch) error {
	e := importBatchEntity{
		BatchID:      batch.BatchID,
		Source:       batch.Source,
		Status:       batch.Status,
		ErrorMessage: batch.ErrorMessage,
		RowsRead:     batch.RowsRead,
		RowsStored:   batch.RowsStored,
		RowsDropped:  batch.RowsDropped,
		Invalid:      batch.Invalid,
		StartedAt:    batch.StartedAt,
		FinishedAt:   batch.FinishedAt,
	}
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("failed to record import batch: %w", err)
	}
	batch.ID = e.ID
	return nil
}

// List retrieves import batches with an optional status filter
func (r *GormImportBatchRepository) List(ctx context.Context, status string, limit, offset int) ([]models.ImportBatch, error) {
	q := r.db.WithContext(ctx).Model(&importBatchEntity{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var entities []importBatchEntity
	if err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}

	batches := make([]models.ImportBatch, len(entities))
	for i, e := range entities {
		batches[i] = models.ImportBatch{
			ID:           e.ID,
			BatchID:      e.BatchID,
			Source:       e.Source,
			Status:       e.Status,
			ErrorMessage: e.ErrorMessage,
			RowsRead:     e.RowsRead,
			RowsStored:   e.RowsStored,
			RowsDropped:  e.RowsDropped,
			Invalid:      e.Invalid,
			StartedAt:    e.StartedAt,
			FinishedAt:   e.FinishedAt,
		}
	}
	return batches, nil
}
