package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jengzang/maritime-metrics-go/internal/models"
)

const insertBatchSize = 500

// waypointEntity is the GORM model for the maritime_metrics table
type waypointEntity struct {
	ID                       int64      `gorm:"column:id;primaryKey;autoIncrement"`
	VesselCode               string     `gorm:"column:vessel_code;not null;index:idx_maritime_metrics_vessel,priority:1"`
	RecordedAt               *time.Time `gorm:"column:recorded_at"`
	Latitude                 *float64   `gorm:"column:latitude"`
	Longitude                *float64   `gorm:"column:longitude"`
	Power                    *float64   `gorm:"column:power"`
	FuelConsumption          *float64   `gorm:"column:fuel_consumption"`
	ActualSpeedOverground    *float64   `gorm:"column:actual_speed_overground"`
	ProposedSpeedOverground  *float64   `gorm:"column:proposed_speed_overground"`
	PredictedFuelConsumption *float64   `gorm:"column:predicted_fuel_consumption"`
	SpeedDifference          *float64   `gorm:"column:speed_difference"`
	IsInvalid                bool       `gorm:"column:is_invalid;not null;default:false"`
	IsBelowZero              bool       `gorm:"column:is_below_zero;not null;default:false"`
	IsMissing                bool       `gorm:"column:is_missing;not null;default:false"`
	IsOutlier                bool       `gorm:"column:is_outlier;not null;default:false"`
}

// TableName ensures GORM uses the shared table name
func (waypointEntity) TableName() string {
	return "maritime_metrics"
}

func toEntity(w models.Waypoint) waypointEntity {
	return waypointEntity{
		VesselCode:               w.VesselCode,
		RecordedAt:               w.Datetime,
		Latitude:                 w.Latitude,
		Longitude:                w.Longitude,
		Power:                    w.Power,
		FuelConsumption:          w.FuelConsumption,
		ActualSpeedOverground:    w.ActualSpeedOverground,
		ProposedSpeedOverground:  w.ProposedSpeedOverground,
		PredictedFuelConsumption: w.PredictedFuelConsumption,
		SpeedDifference:          w.SpeedDifference,
		IsInvalid:                w.IsInvalid,
		IsBelowZero:              w.IsBelowZero,
		IsMissing:                w.IsMissing,
		IsOutlier:                w.IsOutlier,
	}
}

func (e waypointEntity) toModel() models.Waypoint {
	return models.Waypoint{
		ID:                       e.ID,
		VesselCode:               e.VesselCode,
		Datetime:                 e.RecordedAt,
		Latitude:                 e.Latitude,
		Longitude:                e.Longitude,
		Power:                    e.Power,
		FuelConsumption:          e.FuelConsumption,
		ActualSpeedOverground:    e.ActualSpeedOverground,
		ProposedSpeedOverground:  e.ProposedSpeedOverground,
		PredictedFuelConsumption: e.PredictedFuelConsumption,
		SpeedDifference:          e.SpeedDifference,
		IsInvalid:                e.IsInvalid,
		IsBelowZero:              e.IsBelowZero,
		IsMissing:                e.IsMissing,
		IsOutlier:                e.IsOutlier,
	}
}

// GormWaypointStore is a PostgreSQL backed waypoint store
type GormWaypointStore struct {
	db *gorm.DB
}

// OpenPostgres connects to PostgreSQL and migrates the tables
func OpenPostgres(dsn string) (*GormWaypointStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	store := NewGormWaypointStore(db)
	if err := store.Migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// NewGormWaypointStore creates a store over an open GORM connection
func NewGormWaypointStore(db *gorm.DB) *GormWaypointStore {
	return &GormWaypointStore{db: db}
}

// Migrate creates or updates the waypoint and import history tables
func (r *GormWaypointStore) Migrate() error {
	if err := r.db.AutoMigrate(&waypointEntity{}, &importBatchEntity{}); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (r *GormWaypointStore) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReplaceAll deletes the current dataset and inserts the new one in a single transaction
func (r *GormWaypointStore) ReplaceAll(ctx context.Context, waypoints []models.Waypoint) error {
	entities := make([]waypointEntity, len(waypoints))
	for i, w := range waypoints {
		entities[i] = toEntity(w)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&waypointEntity{}).Error; err != nil {
			return fmt.Errorf("failed to clear waypoints: %w", err)
		}
		if len(entities) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(entities, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert waypoints: %w", err)
		}
		return nil
	})
}

// FindAll retrieves every stored waypoint
func (r *GormWaypointStore) FindAll(ctx context.Context) ([]models.Waypoint, error) {
	return r.find(r.db.WithContext(ctx))
}

// VesselCodes retrieves the distinct vessel codes
func (r *GormWaypointStore) VesselCodes(ctx context.Context) ([]string, error) {
	codes := []string{}
	err := r.db.WithContext(ctx).Model(&waypointEntity{}).
		Distinct("vessel_code").Order("vessel_code").Pluck("vessel_code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query vessel codes: %w", err)
	}
	return codes, nil
}

// FindByVessel retrieves all waypoints of a vessel
func (r *GormWaypointStore) FindByVessel(ctx context.Context, vesselCode string) ([]models.Waypoint, error) {
	return r.find(r.db.WithContext(ctx).Where("vessel_code = ?", vesselCode))
}

// FindByVesselWhere retrieves the waypoints of a vessel whose flag equals value
func (r *GormWaypointStore) FindByVesselWhere(ctx context.Context, vesselCode string, flag models.Flag, value bool) ([]models.Waypoint, error) {
	column, err := flagColumn(flag)
	if err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx).Where("vessel_code = ? AND "+column+" = ?", vesselCode, value))
}

// CountByVessel counts the waypoints of a vessel
func (r *GormWaypointStore) CountByVessel(ctx context.Context, vesselCode string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&waypointEntity{}).Where("vessel_code = ?", vesselCode).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count waypoints: %w", err)
	}
	return n, nil
}

// CountByVesselWhere counts the waypoints of a vessel carrying a flag
func (r *GormWaypointStore) CountByVesselWhere(ctx context.Context, vesselCode string, flag models.Flag) (int64, error) {
	column, err := flagColumn(flag)
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.db.WithContext(ctx).Model(&waypointEntity{}).
		Where("vessel_code = ? AND "+column+" = ?", vesselCode, true).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %s waypoints: %w", flag, err)
	}
	return n, nil
}

// FindSpeedOutliers retrieves invalid waypoints whose speed deviation exceeds threshold
func (r *GormWaypointStore) FindSpeedOutliers(ctx context.Context, vesselCode string, threshold float64) ([]models.Waypoint, error) {
	return r.find(r.db.WithContext(ctx).Where("vessel_code = ? AND "+speedOutlierPredicate, vesselCode, true, threshold))
}

// FindFuelOutliers retrieves invalid waypoints whose fuel deviation exceeds threshold
func (r *GormWaypointStore) FindFuelOutliers(ctx context.Context, vesselCode string, threshold float64) ([]models.Waypoint, error) {
	return r.find(r.db.WithContext(ctx).Where("vessel_code = ? AND "+fuelOutlierPredicate, vesselCode, true, threshold))
}

// FindSpeedDifferences retrieves location and speed difference of the valid waypoints of a vessel
func (r *GormWaypointStore) FindSpeedDifferences(ctx context.Context, vesselCode string) ([]models.SpeedDifference, error) {
	result := []models.SpeedDifference{}
	err := r.db.WithContext(ctx).Model(&waypointEntity{}).
		Select("latitude, longitude, speed_difference").
		Where("vessel_code = ? AND is_invalid = ? AND speed_difference IS NOT NULL", vesselCode, false).
		Order("id").Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query speed differences: %w", err)
	}
	return result, nil
}

// FindSummariesBetween retrieves measured values of valid waypoints recorded within [start, end]
func (r *GormWaypointStore) FindSummariesBetween(ctx context.Context, vesselCode string, start, end time.Time) ([]models.MetricSummary, error) {
	result := []models.MetricSummary{}
	err := r.db.WithContext(ctx).Model(&waypointEntity{}).
		Select("power, fuel_consumption, actual_speed_overground, proposed_speed_overground, predicted_fuel_consumption, speed_difference").
		Where("vessel_code = ? AND is_invalid = ? AND recorded_at BETWEEN ? AND ?", vesselCode, false, start, end).
		Order("id").Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query metric summaries: %w", err)
	}
	return result, nil
}

func (r *GormWaypointStore) find(q *gorm.DB) ([]models.Waypoint, error) {
	var entities []waypointEntity
	if err := q.Order("id").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to query waypoints: %w", err)
	}

	waypoints := make([]models.Waypoint, len(entities))
	for i, e := range entities {
		waypoints[i] = e.toModel()
	}
	return waypoints, nil
}
