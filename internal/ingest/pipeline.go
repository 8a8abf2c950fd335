// Package ingest drives the classification of a whole tabular import and hands
// the finished batch to the record store in a single write.
package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/maritime-metrics-go/internal/classify"
	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
)

// Store is the write side of the record store
type Store interface {
	ReplaceAll(ctx context.Context, waypoints []models.Waypoint) error
}

// Batch is a fully classified import that has not been written yet
type Batch struct {
	Waypoints []models.Waypoint
	Result    models.ImportResult
}

// Pipeline reads, classifies and stores tabular imports
type Pipeline struct {
	classifier *classify.Classifier
	store      Store
	workers    int
	log        logger.Logger
}

// NewPipeline creates a pipeline. workers bounds the classification fan-out.
func NewPipeline(classifier *classify.Classifier, store Store, workers int, log logger.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		classifier: classifier,
		store:      store,
		workers:    workers,
		log:        log,
	}
}

// Run stages the whole stream and replaces the stored dataset only when every
// row was read successfully. A failed run leaves the store untouched.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	batch, err := p.Stage(ctx, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := p.store.ReplaceAll(ctx, batch.Waypoints); err != nil {
		return nil, fmt.Errorf("failed to replace dataset: %w", err)
	}

	p.log.Info("Import stored",
		"batch_id", batch.Result.BatchID,
		"stored", batch.Result.RowsStored,
		"dropped", batch.Result.RowsDropped,
		"invalid", batch.Result.Flags.Invalid,
		"write_ms", time.Since(start).Milliseconds(),
	)
	return &batch.Result, nil
}

// Stage reads and classifies the stream without touching the store
func (p *Pipeline) Stage(ctx context.Context, r io.Reader) (*Batch, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}

	results, kept, err := p.classify(ctx, rows)
	if err != nil {
		return nil, err
	}

	batch := &Batch{
		Waypoints: make([]models.Waypoint, 0, len(rows)),
		Result: models.ImportResult{
			BatchID:     uuid.NewString(),
			RowsRead:    len(rows),
			Diagnostics: []models.Diagnostic{},
		},
	}
	// Reduce in source order so that stored order follows the file
	for i, res := range results {
		batch.Result.Diagnostics = append(batch.Result.Diagnostics, res.Diagnostics...)
		if !kept[i] {
			batch.Result.RowsDropped++
			continue
		}
		batch.Waypoints = append(batch.Waypoints, res.Waypoint)
		batch.Result.Flags.Add(res.Waypoint)
	}
	batch.Result.RowsStored = len(batch.Waypoints)

	p.log.Debug("Import staged",
		"batch_id", batch.Result.BatchID,
		"rows", batch.Result.RowsRead,
		"diagnostics", len(batch.Result.Diagnostics),
	)
	return batch, nil
}

// classify fans rows out over contiguous chunks, one per worker
func (p *Pipeline) classify(ctx context.Context, rows []SourceRow) ([]classify.Result, []bool, error) {
	results := make([]classify.Result, len(rows))
	kept := make([]bool, len(rows))

	chunk := (len(rows) + p.workers - 1) / p.workers
	if chunk == 0 {
		return results, kept, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(rows); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(rows))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i], kept[i] = p.classifier.Classify(rows[i].Line, rows[i].Row)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("classification aborted: %w", err)
	}

	return results, kept, nil
}
