package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/maritime-metrics-go/internal/models"
)

func TestGormWaypointStore_Postgres(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx := context.Background()
	store, err := OpenPostgres(dsn)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.ReplaceAll(ctx, fixture()))

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	n, err := store.CountByVesselWhere(ctx, "V1", models.FlagMissing)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	outliers, err := store.FindSpeedOutliers(ctx, "V1", 0.5)
	require.NoError(t, err)
	assert.Len(t, outliers, 1)

	codes, err := store.VesselCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"V1", "V2"}, codes)

	require.NoError(t, store.ReplaceAll(ctx, nil))
	all, err = store.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWaypointEntity_RoundTrip(t *testing.T) {
	w := fixture()[1]
	w.ID = 42

	e := toEntity(w)
	assert.Zero(t, e.ID, "ids are assigned by the store")
	e.ID = 42
	assert.Equal(t, w, e.toModel())
	assert.Equal(t, "maritime_metrics", e.TableName())
}
