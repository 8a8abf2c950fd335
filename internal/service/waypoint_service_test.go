package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/maritime-metrics-go/internal/apperr"
	"github.com/jengzang/maritime-metrics-go/internal/models"
)

func TestWaypointService_Listings(t *testing.T) {
	svc := NewWaypointService(newTestStore(t, fleet()))
	ctx := context.Background()

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)

	codes, err := svc.VesselCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"V1", "V2", "V3"}, codes)

	valid, err := svc.Valid(ctx, "V1")
	require.NoError(t, err)
	require.Len(t, valid, 1)
	assert.False(t, valid[0].IsInvalid)

	invalid, err := svc.WithFlag(ctx, "V1", models.FlagInvalid)
	require.NoError(t, err)
	assert.Len(t, invalid, 5)

	outliers, err := svc.WithFlag(ctx, "V1", models.FlagOutlier)
	require.NoError(t, err)
	require.Len(t, outliers, 1)
	assert.True(t, outliers[0].IsOutlier)

	// unknown vessels list nothing
	none, err := svc.WithFlag(ctx, "NOPE", models.FlagMissing)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWaypointService_SpeedDifferences(t *testing.T) {
	svc := NewWaypointService(newTestStore(t, fleet()))

	diffs, err := svc.SpeedDifferences(context.Background(), "V1")
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, 10.1, *diffs[0].Latitude)
	assert.Equal(t, -1.0, *diffs[0].SpeedDifference)
}

func TestWaypointService_Summaries(t *testing.T) {
	svc := NewWaypointService(newTestStore(t, fleet()))
	ctx := context.Background()

	got, err := svc.Summaries(ctx, "V1", "2023-06-01T00:00:00", "2023-06-01T23:59:59")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 900.0, *got[0].Power)
	assert.Equal(t, -1.0, *got[0].SpeedDifference)

	got, err = svc.Summaries(ctx, "V1", "2023-06-02T00:00:00", "2023-06-03T00:00:00")
	require.NoError(t, err)
	assert.Empty(t, got)

	tests := []struct {
		name       string
		vessel     string
		start, end string
		kind       error
	}{
		{"bad start", "V1", "2023-06-01 00:00:00", "2023-06-01T23:59:59", apperr.ErrInvalidArgument},
		{"bad end", "V1", "2023-06-01T00:00:00", "tomorrow", apperr.ErrInvalidArgument},
		{"reversed", "V1", "2023-06-02T00:00:00", "2023-06-01T00:00:00", apperr.ErrInvalidArgument},
		{"unknown vessel", "NOPE", "2023-06-01T00:00:00", "2023-06-02T00:00:00", apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Summaries(ctx, tt.vessel, tt.start, tt.end)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
