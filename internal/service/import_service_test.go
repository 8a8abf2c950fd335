package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/maritime-metrics-go/internal/apperr"
	"github.com/jengzang/maritime-metrics-go/internal/classify"
	"github.com/jengzang/maritime-metrics-go/internal/ingest"
	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
)

const importHeader = "vesselCode,datetime,latitude,longitude,power,fuelConsumption,actualSpeedOverground,proposedSpeedOverground,predictedFuelConsumption\n"

func newTestImportService(t *testing.T) (*ImportService, *StatsService) {
	t.Helper()
	stores := newTestStores(t, nil)
	m := newTestMetrics()
	pipeline := ingest.NewPipeline(classify.NewClassifier(classify.DefaultThresholds), stores.Waypoints, 4, logger.NewNop())
	return NewImportService(pipeline, stores.Batches, m, logger.NewNop()), NewStatsService(stores.Waypoints, 0, m, logger.NewNop())
}

func TestImportService_Import(t *testing.T) {
	svc, stats := newTestImportService(t)
	ctx := context.Background()

	input := importHeader +
		"V1,2023-06-01 00:00:00,51.5,-0.1,1200,10,12,11,10.5\n" +
		"V1,2023-06-01 00:01:00,51.5,-0.1,-1,10,12,11,10.5\n" +
		",2023-06-01 00:02:00,51.5,-0.1,1200,10,12,11,10.5\n"

	res, err := svc.Import(ctx, "metrics.csv", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsStored)
	assert.Equal(t, 1, res.RowsDropped)
	assert.Equal(t, 1, res.Flags.BelowZero)

	freq, err := stats.ProblemFrequencies(ctx, "V1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), freq[0].Count)

	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.ImportsTotal.WithLabelValues(models.ImportStatusCompleted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(svc.metrics.StoredWaypoints))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.RowsTotal.WithLabelValues("dropped")))
}

func TestImportService_FailedImportKeepsDataset(t *testing.T) {
	svc, stats := newTestImportService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, "metrics.csv", strings.NewReader(importHeader+"V1,2023-06-01 00:00:00,51.5,-0.1,1200,10,12,11,10.5\n"))
	require.NoError(t, err)

	_, err = svc.Import(ctx, "metrics.csv", strings.NewReader(importHeader+"V2,2023-06-01 00:00:00,51.5\n"))
	assert.ErrorIs(t, err, apperr.ErrMalformedInput)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.ImportsTotal.WithLabelValues(models.ImportStatusFailed)))

	_, err = stats.ProblemFrequencies(ctx, "V1")
	assert.NoError(t, err)
	_, err = stats.ProblemFrequencies(ctx, "V2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestImportService_ConcurrentImports(t *testing.T) {
	svc, stats := newTestImportService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Import(ctx, "metrics.csv", strings.NewReader(importHeader+
				"V1,2023-06-01 00:00:00,51.5,-0.1,1200,10,12,11,10.5\n"+
				"V1,2023-06-01 00:01:00,51.5,-0.1,1200,10,12,11,10.5\n"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	freq, err := stats.ProblemFrequencies(ctx, "V1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), freq[0].Count)
}

func TestImportService_History(t *testing.T) {
	svc, _ := newTestImportService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, "good.csv", strings.NewReader(importHeader+"V1,2023-06-01 00:00:00,51.5,-0.1,-1,10,12,11,10.5\n"))
	require.NoError(t, err)
	_, err = svc.Import(ctx, "bad.csv", strings.NewReader(""))
	require.Error(t, err)

	history, err := svc.History(ctx, models.ImportBatchFilter{})
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "bad.csv", history[0].Source)
	assert.Equal(t, models.ImportStatusFailed, history[0].Status)
	assert.Contains(t, history[0].ErrorMessage, "malformed input")
	assert.NotEmpty(t, history[0].BatchID)

	assert.Equal(t, "good.csv", history[1].Source)
	assert.Equal(t, models.ImportStatusCompleted, history[1].Status)
	assert.Equal(t, 1, history[1].RowsStored)
	assert.Equal(t, 1, history[1].Invalid)

	completed, err := svc.History(ctx, models.ImportBatchFilter{Status: models.ImportStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	_, err = svc.History(ctx, models.ImportBatchFilter{Status: "running"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = svc.History(ctx, models.ImportBatchFilter{Limit: -1})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
