package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/maritime-metrics-go/internal/config"
	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/internal/repository"
	"github.com/jengzang/maritime-metrics-go/pkg/logger"
	"github.com/jengzang/maritime-metrics-go/pkg/metrics"
)

func f(v float64) *float64 { return &v }

func at(s string) *time.Time {
	t, err := time.Parse(models.DateTimeLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func newTestStores(t *testing.T, waypoints []models.Waypoint) *repository.Stores {
	t.Helper()
	cfg := &config.Config{StoreDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "metrics.db")}
	stores, err := repository.Open(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	require.NoError(t, stores.Waypoints.ReplaceAll(context.Background(), waypoints))
	return stores
}

func newTestStore(t *testing.T, waypoints []models.Waypoint) repository.WaypointStore {
	t.Helper()
	return newTestStores(t, waypoints).Waypoints
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics("test", prometheus.NewRegistry())
}

// fleet returns waypoints for three vessels:
// V1 has five invalid waypoints and one valid one, V2 and V3 one valid waypoint each.
func fleet() []models.Waypoint {
	return []models.Waypoint{
		{ // |dev| 2
			VesselCode: "V1", Datetime: at("2023-06-01 00:00:00"), Latitude: f(10), Longitude: f(20),
			ActualSpeedOverground: f(10), ProposedSpeedOverground: f(12), SpeedDifference: f(-2),
			IsMissing: true, IsInvalid: true,
		},
		{ // |dev| 0
			VesselCode: "V1", Datetime: at("2023-06-01 00:03:00"), Latitude: f(10), Longitude: f(20.01),
			ActualSpeedOverground: f(10), ProposedSpeedOverground: f(10), SpeedDifference: f(0),
			IsMissing: true, IsInvalid: true,
		},
		{ // |dev| 20, speed and fuel outlier
			VesselCode: "V1", Datetime: at("2023-06-01 00:10:00"),
			ActualSpeedOverground: f(30), ProposedSpeedOverground: f(10), SpeedDifference: f(20),
			FuelConsumption: f(10), PredictedFuelConsumption: f(2),
			IsMissing: true, IsOutlier: true, IsInvalid: true,
		},
		{ // |dev| 5, zero proposed speed
			VesselCode: "V1", Datetime: at("2023-06-01 00:11:00"), Power: f(-1),
			ActualSpeedOverground: f(5), ProposedSpeedOverground: f(0), SpeedDifference: f(5),
			IsMissing: true, IsBelowZero: true, IsInvalid: true,
		},
		{
			VesselCode: "V1", IsMissing: true, IsInvalid: true,
		},
		{ // |dev| 1
			VesselCode: "V1", Datetime: at("2023-06-01 00:20:00"), Latitude: f(10.1), Longitude: f(20.1),
			Power: f(900), FuelConsumption: f(9), PredictedFuelConsumption: f(9),
			ActualSpeedOverground: f(8), ProposedSpeedOverground: f(9), SpeedDifference: f(-1),
		},
		{ // |dev| 1
			VesselCode: "V2", Datetime: at("2023-06-02 12:00:00"),
			ActualSpeedOverground: f(8), ProposedSpeedOverground: f(9), SpeedDifference: f(-1),
		},
		{ // |dev| 2
			VesselCode: "V3", Datetime: at("2023-06-02 12:00:00"),
			ActualSpeedOverground: f(12), ProposedSpeedOverground: f(10), SpeedDifference: f(2),
		},
	}
}
