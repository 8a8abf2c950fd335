package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/maritime-metrics-go/internal/apperr"
	"github.com/jengzang/maritime-metrics-go/internal/ingest"
	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/internal/repository"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
	"github.com/jengzang/maritime-metrics-go/pkg/metrics"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// ImportService runs tabular imports and keeps their history. Only one import writes at a time.
type ImportService struct {
	pipeline *ingest.Pipeline
	batches  repository.ImportBatchLog
	metrics  *metrics.Metrics
	log      logger.Logger

	mu sync.Mutex
}

// NewImportService creates a new import service
func NewImportService(pipeline *ingest.Pipeline, batches repository.ImportBatchLog, m *metrics.Metrics, log logger.Logger) *ImportService {
	return &ImportService{
		pipeline: pipeline,
		batches:  batches,
		metrics:  m,
		log:      log,
	}
}

// Import replaces the dataset with the contents of r. source names the input in the history.
func (s *ImportService) Import(ctx context.Context, source string, r io.Reader) (*models.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result, err := s.pipeline.Run(ctx, r)
	s.metrics.ImportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ImportsTotal.WithLabelValues(models.ImportStatusFailed).Inc()
		s.log.Warn("Import failed", "source", source, "error", err)
		s.record(ctx, &models.ImportBatch{
			BatchID:      uuid.NewString(),
			Source:       source,
			Status:       models.ImportStatusFailed,
			ErrorMessage: err.Error(),
			StartedAt:    start,
			FinishedAt:   time.Now(),
		})
		return nil, err
	}

	s.metrics.ImportsTotal.WithLabelValues(models.ImportStatusCompleted).Inc()
	s.metrics.RowsTotal.WithLabelValues("stored").Add(float64(result.RowsStored))
	s.metrics.RowsTotal.WithLabelValues("dropped").Add(float64(result.RowsDropped))
	s.metrics.FlagsTotal.WithLabelValues(string(models.FlagInvalid)).Add(float64(result.Flags.Invalid))
	s.metrics.FlagsTotal.WithLabelValues(string(models.FlagMissing)).Add(float64(result.Flags.Missing))
	s.metrics.FlagsTotal.WithLabelValues(string(models.FlagBelowZero)).Add(float64(result.Flags.BelowZero))
	s.metrics.FlagsTotal.WithLabelValues(string(models.FlagOutlier)).Add(float64(result.Flags.Outlier))
	s.metrics.StoredWaypoints.Set(float64(result.RowsStored))

	s.record(ctx, &models.ImportBatch{
		BatchID:     result.BatchID,
		Source:      source,
		Status:      models.ImportStatusCompleted,
		RowsRead:    result.RowsRead,
		RowsStored:  result.RowsStored,
		RowsDropped: result.RowsDropped,
		Invalid:     result.Flags.Invalid,
		StartedAt:   start,
		FinishedAt:  time.Now(),
	})

	s.log.Info("Import completed",
		"batch_id", result.BatchID,
		"source", source,
		"rows", result.RowsRead,
		"stored", result.RowsStored,
		"dropped", result.RowsDropped,
		"duration", time.Since(start),
	)
	return result, nil
}

// record writes the history entry. The dataset outcome stands even if this fails.
func (s *ImportService) record(ctx context.Context, batch *models.ImportBatch) {
	if err := s.batches.Record(context.WithoutCancel(ctx), batch); err != nil {
		s.log.Error("Failed to record import batch", "batch_id", batch.BatchID, "error", err)
	}
}

// History lists past imports, most recent first
func (s *ImportService) History(ctx context.Context, filter models.ImportBatchFilter) ([]models.ImportBatch, error) {
	switch filter.Status {
	case "", models.ImportStatusCompleted, models.ImportStatusFailed:
	default:
		return nil, apperr.InvalidArgument("unknown import status %q", filter.Status)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperr.InvalidArgument("limit and offset must not be negative")
	}
	if filter.Limit == 0 {
		filter.Limit = defaultHistoryLimit
	}
	filter.Limit = min(filter.Limit, maxHistoryLimit)

	batches, err := s.batches.List(ctx, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get import history: %w", err)
	}
	return batches, nil
}
