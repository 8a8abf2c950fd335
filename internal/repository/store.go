package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jengzang/maritime-metrics-go/internal/models"
)

// WaypointStore is the record store behind the ingestion pipeline and the statistics engine.
// Natural order of every list is insertion order.
type WaypointStore interface {
	// ReplaceAll atomically swaps the whole dataset
	ReplaceAll(ctx context.Context, waypoints []models.Waypoint) error

	FindAll(ctx context.Context) ([]models.Waypoint, error)
	VesselCodes(ctx context.Context) ([]string, error)
	FindByVessel(ctx context.Context, vesselCode string) ([]models.Waypoint, error)
	FindByVesselWhere(ctx context.Context, vesselCode string, flag models.Flag, value bool) ([]models.Waypoint, error)
	CountByVessel(ctx context.Context, vesselCode string) (int64, error)
	CountByVesselWhere(ctx context.Context, vesselCode string, flag models.Flag) (int64, error)

	// FindSpeedOutliers returns invalid waypoints with |actual - proposed| / proposed > threshold
	FindSpeedOutliers(ctx context.Context, vesselCode string, threshold float64) ([]models.Waypoint, error)
	// FindFuelOutliers returns invalid waypoints with |fuel - predicted| / predicted > threshold
	FindFuelOutliers(ctx context.Context, vesselCode string, threshold float64) ([]models.Waypoint, error)

	FindSpeedDifferences(ctx context.Context, vesselCode string) ([]models.SpeedDifference, error)
	FindSummariesBetween(ctx context.Context, vesselCode string, start, end time.Time) ([]models.MetricSummary, error)
}

// flagColumn maps a flag to its column name
func flagColumn(f models.Flag) (string, error) {
	switch f {
	case models.FlagInvalid:
		return "is_invalid", nil
	case models.FlagMissing:
		return "is_missing", nil
	case models.FlagBelowZero:
		return "is_below_zero", nil
	case models.FlagOutlier:
		return "is_outlier", nil
	}
	return "", fmt.Errorf("unknown flag %q", f)
}

// Ratio predicates shared by both stores. A zero divisor never matches.
const (
	speedOutlierPredicate = `is_invalid = ? AND proposed_speed_overground IS NOT NULL AND actual_speed_overground IS NOT NULL
		AND proposed_speed_overground <> 0
		AND ABS(actual_speed_overground - proposed_speed_overground) / proposed_speed_overground > ?`
	fuelOutlierPredicate = `is_invalid = ? AND predicted_fuel_consumption IS NOT NULL AND fuel_consumption IS NOT NULL
		AND predicted_fuel_consumption <> 0
		AND ABS(fuel_consumption - predicted_fuel_consumption) / predicted_fuel_consumption > ?`
)
