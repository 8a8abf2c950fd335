package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/maritime-metrics-go/internal/apperr"
	"github.com/jengzang/maritime-metrics-go/internal/classify"
	"github.com/jengzang/maritime-metrics-go/internal/database"
	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/internal/repository"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
)

type memStore struct {
	mu        sync.Mutex
	waypoints []models.Waypoint
	writes    int
	err       error
}

func (s *memStore) ReplaceAll(_ context.Context, waypoints []models.Waypoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes++
	s.waypoints = append([]models.Waypoint(nil), waypoints...)
	return nil
}

func newPipeline(store Store, workers int) *Pipeline {
	return NewPipeline(classify.NewClassifier(classify.DefaultThresholds), store, workers, logger.NewNop())
}

const sample = header + `
V1,2023-06-01 00:00:00,51.5,-0.1,1200,10,12,11,10.5
,2023-06-01 00:01:00,51.5,-0.1,1200,10,12,11,10.5
V1,2023-06-01 00:02:00,51.5,-0.1,-5,10,12,11,10.5
V2,NULL,95,-0.1,1200,10,12,30,10.5
`

func TestPipeline_Run(t *testing.T) {
	store := &memStore{}

	res, err := newPipeline(store, 2).Run(context.Background(), strings.NewReader(sample))
	require.NoError(t, err)

	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 4, res.RowsRead)
	assert.Equal(t, 3, res.RowsStored)
	assert.Equal(t, 1, res.RowsDropped)
	assert.Equal(t, models.FlagCounts{Invalid: 2, Missing: 1, BelowZero: 1, Outlier: 1}, res.Flags)

	require.Len(t, store.waypoints, 3)
	assert.Equal(t, 1, store.writes)
	assert.Equal(t, "V1", store.waypoints[0].VesselCode)
	assert.Equal(t, "V2", store.waypoints[2].VesselCode)

	var dropped []models.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Problem == models.ProblemNoVessel {
			dropped = append(dropped, d)
		}
	}
	require.Len(t, dropped, 1)
	assert.Equal(t, 3, dropped[0].Row)
}

func TestPipeline_MalformedLeavesStoreUntouched(t *testing.T) {
	store := &memStore{waypoints: []models.Waypoint{{VesselCode: "OLD"}}}

	bad := sample + "V3,2023-06-01 00:00:00,1,2,3\n"
	_, err := newPipeline(store, 4).Run(context.Background(), strings.NewReader(bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrMalformedInput)

	assert.Equal(t, 0, store.writes)
	require.Len(t, store.waypoints, 1)
	assert.Equal(t, "OLD", store.waypoints[0].VesselCode)
}

func TestPipeline_StoreFailure(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}

	_, err := newPipeline(store, 1).Run(context.Background(), strings.NewReader(sample))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to replace dataset")
}

func TestPipeline_PreservesOrderAcrossWorkers(t *testing.T) {
	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&b, "V%04d,2023-06-01 00:00:00,1,2,3,4,5,5,4\n", i)
	}

	for _, workers := range []int{1, 3, 8, 64} {
		batch, err := newPipeline(&memStore{}, workers).Stage(context.Background(), strings.NewReader(b.String()))
		require.NoError(t, err)
		require.Len(t, batch.Waypoints, 1000)
		for i, w := range batch.Waypoints {
			require.Equal(t, fmt.Sprintf("V%04d", i), w.VesselCode, "workers=%d", workers)
		}
	}
}

func TestPipeline_StageDoesNotWrite(t *testing.T) {
	store := &memStore{}

	batch, err := newPipeline(store, 2).Stage(context.Background(), strings.NewReader(sample))
	require.NoError(t, err)
	assert.Len(t, batch.Waypoints, 3)
	assert.Equal(t, 0, store.writes)
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &memStore{}
	_, err := newPipeline(store, 2).Run(ctx, strings.NewReader(sample))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.writes)
}

func TestPipeline_ReimportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "metrics.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, logger.NewNop()))

	store := repository.NewSQLiteWaypointStore(db)
	p := newPipeline(store, 2)

	_, err = p.Run(ctx, strings.NewReader(sample))
	require.NoError(t, err)
	first, err := store.FindAll(ctx)
	require.NoError(t, err)

	_, err = p.Run(ctx, strings.NewReader(sample))
	require.NoError(t, err)
	second, err := store.FindAll(ctx)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].VesselCode, second[i].VesselCode)
		assert.Equal(t, first[i].IsInvalid, second[i].IsInvalid)
		assert.Equal(t, first[i].SpeedDifference, second[i].SpeedDifference)
	}
}
