package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/maritime-metrics-go/internal/database"
	"github.com/jengzang/maritime-metrics-go/internal/models"
)

const waypointColumns = `id, vessel_code, recorded_at, latitude, longitude, power, fuel_consumption,
	actual_speed_overground, proposed_speed_overground, predicted_fuel_consumption, speed_difference,
	is_invalid, is_below_zero, is_missing, is_outlier`

// SQLiteWaypointStore handles database operations for waypoints
type SQLiteWaypointStore struct {
	db *sql.DB
}

// NewSQLiteWaypointStore creates a new sqlite backed waypoint store
func NewSQLiteWaypointStore(db *sql.DB) *SQLiteWaypointStore {
	return &SQLiteWaypointStore{db: db}
}

// ReplaceAll deletes the current dataset and inserts the new one in a single transaction
func (r *SQLiteWaypointStore) ReplaceAll(ctx context.Context, waypoints []models.Waypoint) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM maritime_metrics"); err != nil {
			return fmt.Errorf("failed to clear waypoints: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO maritime_metrics (
			vessel_code, recorded_at, latitude, longitude, power, fuel_consumption,
			actual_speed_overground, proposed_speed_overground, predicted_fuel_consumption, speed_difference,
			is_invalid, is_below_zero, is_missing, is_outlier
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, w := range waypoints {
			_, err := stmt.ExecContext(ctx,
				w.VesselCode, formatTime(w.Datetime), w.Latitude, w.Longitude, w.Power, w.FuelConsumption,
				w.ActualSpeedOverground, w.ProposedSpeedOverground, w.PredictedFuelConsumption, w.SpeedDifference,
				w.IsInvalid, w.IsBelowZero, w.IsMissing, w.IsOutlier,
			)
			if err != nil {
				return fmt.Errorf("failed to insert waypoint %d: %w", i, err)
			}
		}
		return nil
	})
}

// FindAll retrieves every stored waypoint
func (r *SQLiteWaypointStore) FindAll(ctx context.Context) ([]models.Waypoint, error) {
	return r.query(ctx, "SELECT "+waypointColumns+" FROM maritime_metrics ORDER BY id")
}

// VesselCodes retrieves the distinct vessel codes
func (r *SQLiteWaypointStore) VesselCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT vessel_code FROM maritime_metrics ORDER BY vessel_code")
	if err != nil {
		return nil, fmt.Errorf("failed to query vessel codes: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan vessel code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// FindByVessel retrieves all waypoints of a vessel
func (r *SQLiteWaypointStore) FindByVessel(ctx context.Context, vesselCode string) ([]models.Waypoint, error) {
	return r.query(ctx, "SELECT "+waypointColumns+" FROM maritime_metrics WHERE vessel_code = ? ORDER BY id", vesselCode)
}

// FindByVesselWhere retrieves the waypoints of a vessel whose flag equals value
func (r *SQLiteWaypointStore) FindByVesselWhere(ctx context.Context, vesselCode string, flag models.Flag, value bool) ([]models.Waypoint, error) {
	column, err := flagColumn(flag)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + waypointColumns + " FROM maritime_metrics WHERE vessel_code = ? AND " + column + " = ? ORDER BY id"
	return r.query(ctx, query, vesselCode, value)
}

// CountByVessel counts the waypoints of a vessel
func (r *SQLiteWaypointStore) CountByVessel(ctx context.Context, vesselCode string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM maritime_metrics WHERE vessel_code = ?", vesselCode).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count waypoints: %w", err)
	}
	return n, nil
}

// CountByVesselWhere counts the waypoints of a vessel carrying a flag
func (r *SQLiteWaypointStore) CountByVesselWhere(ctx context.Context, vesselCode string, flag models.Flag) (int64, error) {
	column, err := flagColumn(flag)
	if err != nil {
		return 0, err
	}

	var n int64
	query := "SELECT COUNT(*) FROM maritime_metrics WHERE vessel_code = ? AND " + column + " = 1"
	if err := r.db.QueryRowContext(ctx, query, vesselCode).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s waypoints: %w", flag, err)
	}
	return n, nil
}

// FindSpeedOutliers retrieves invalid waypoints whose speed deviation exceeds threshold
func (r *SQLiteWaypointStore) FindSpeedOutliers(ctx context.Context, vesselCode string, threshold float64) ([]models.Waypoint, error) {
	query := "SELECT " + waypointColumns + " FROM maritime_metrics WHERE vessel_code = ? AND " + speedOutlierPredicate + " ORDER BY id"
	return r.query(ctx, query, vesselCode, true, threshold)
}

// FindFuelOutliers retrieves invalid waypoints whose fuel deviation exceeds threshold
func (r *SQLiteWaypointStore) FindFuelOutliers(ctx context.Context, vesselCode string, threshold float64) ([]models.Waypoint, error) {
	query := "SELECT " + waypointColumns + " FROM maritime_metrics WHERE vessel_code = ? AND " + fuelOutlierPredicate + " ORDER BY id"
	return r.query(ctx, query, vesselCode, true, threshold)
}

// FindSpeedDifferences retrieves location and speed difference of the valid waypoints of a vessel
func (r *SQLiteWaypointStore) FindSpeedDifferences(ctx context.Context, vesselCode string) ([]models.SpeedDifference, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT latitude, longitude, speed_difference FROM maritime_metrics
		WHERE vessel_code = ? AND is_invalid = 0 AND speed_difference IS NOT NULL ORDER BY id`, vesselCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query speed differences: %w", err)
	}
	defer rows.Close()

	result := []models.SpeedDifference{}
	for rows.Next() {
		var lat, lon, diff sql.NullFloat64
		if err := rows.Scan(&lat, &lon, &diff); err != nil {
			return nil, fmt.Errorf("failed to scan speed difference: %w", err)
		}
		result = append(result, models.SpeedDifference{
			Latitude:        nullFloat(lat),
			Longitude:       nullFloat(lon),
			SpeedDifference: nullFloat(diff),
		})
	}
	return result, rows.Err()
}

// FindSummariesBetween retrieves measured values of valid waypoints recorded within [start, end]
func (r *SQLiteWaypointStore) FindSummariesBetween(ctx context.Context, vesselCode string, start, end time.Time) ([]models.MetricSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT power, fuel_consumption, actual_speed_overground,
		proposed_speed_overground, predicted_fuel_consumption, speed_difference
		FROM maritime_metrics
		WHERE vessel_code = ? AND is_invalid = 0 AND recorded_at BETWEEN ? AND ?
		ORDER BY id`,
		vesselCode, start.Format(models.DateTimeLayout), end.Format(models.DateTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query metric summaries: %w", err)
	}
	defer rows.Close()

	result := []models.MetricSummary{}
	for rows.Next() {
		var power, fuel, actual, proposed, predicted, diff sql.NullFloat64
		if err := rows.Scan(&power, &fuel, &actual, &proposed, &predicted, &diff); err != nil {
			return nil, fmt.Errorf("failed to scan metric summary: %w", err)
		}
		result = append(result, models.MetricSummary{
			Power:                    nullFloat(power),
			FuelConsumption:          nullFloat(fuel),
			ActualSpeedOverground:    nullFloat(actual),
			ProposedSpeedOverground:  nullFloat(proposed),
			PredictedFuelConsumption: nullFloat(predicted),
			SpeedDifference:          nullFloat(diff),
		})
	}
	return result, rows.Err()
}

func (r *SQLiteWaypointStore) query(ctx context.Context, query string, args ...interface{}) ([]models.Waypoint, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query waypoints: %w", err)
	}
	defer rows.Close()

	waypoints := []models.Waypoint{}
	for rows.Next() {
		w, err := scanWaypoint(rows)
		if err != nil {
			return nil, err
		}
		waypoints = append(waypoints, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate waypoints: %w", err)
	}

	return waypoints, nil
}

func scanWaypoint(rows *sql.Rows) (models.Waypoint, error) {
	var (
		w                                                        models.Waypoint
		recordedAt                                               sql.NullString
		lat, lon, power, fuel, actual, proposed, predicted, diff sql.NullFloat64
	)
	err := rows.Scan(
		&w.ID, &w.VesselCode, &recordedAt, &lat, &lon, &power, &fuel,
		&actual, &proposed, &predicted, &diff,
		&w.IsInvalid, &w.IsBelowZero, &w.IsMissing, &w.IsOutlier,
	)
	if err != nil {
		return w, fmt.Errorf("failed to scan waypoint: %w", err)
	}

	if recordedAt.Valid {
		t, err := time.Parse(models.DateTimeLayout, recordedAt.String)
		if err != nil {
			return w, fmt.Errorf("failed to parse recorded_at of waypoint %d: %w", w.ID, err)
		}
		w.Datetime = &t
	}
	w.Latitude = nullFloat(lat)
	w.Longitude = nullFloat(lon)
	w.Power = nullFloat(power)
	w.FuelConsumption = nullFloat(fuel)
	w.ActualSpeedOverground = nullFloat(actual)
	w.ProposedSpeedOverground = nullFloat(proposed)
	w.PredictedFuelConsumption = nullFloat(predicted)
	w.SpeedDifference = nullFloat(diff)

	return w, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(models.DateTimeLayout)
}
