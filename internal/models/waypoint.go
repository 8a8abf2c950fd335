package models

import "time"

// DateTimeLayout is the timestamp layout used by the tabular import format
const DateTimeLayout = "2006-01-02 15:04:05"

// Waypoint represents one classified telemetry sample for a vessel
type Waypoint struct {
	ID         int64      `json:"id" db:"id"`
	VesselCode string     `json:"vesselCode" db:"vessel_code"`
	Datetime   *time.Time `json:"datetime" db:"recorded_at"`
	Latitude   *float64   `json:"latitude" db:"latitude"`
	Longitude  *float64   `json:"longitude" db:"longitude"`

	Power                    *float64 `json:"power" db:"power"`
	FuelConsumption          *float64 `json:"fuelConsumption" db:"fuel_consumption"`
	ActualSpeedOverground    *float64 `json:"actualSpeedOverground" db:"actual_speed_overground"`
	ProposedSpeedOverground  *float64 `json:"proposedSpeedOverground" db:"proposed_speed_overground"`
	PredictedFuelConsumption *float64 `json:"predictedFuelConsumption" db:"predicted_fuel_consumption"`

	// Derived: actual - proposed, rounded half-up to 6 decimals
	SpeedDifference *float64 `json:"speedDifference" db:"speed_difference"`

	IsInvalid   bool `json:"isInvalid" db:"is_invalid"`
	IsBelowZero bool `json:"isBelowZero" db:"is_below_zero"`
	IsMissing   bool `json:"isMissing" db:"is_missing"`
	IsOutlier   bool `json:"isOutlier" db:"is_outlier"`
}

// AbsSpeedDeviation returns |actual - proposed| when both speeds are present
func (w Waypoint) AbsSpeedDeviation() (float64, bool) {
	if w.ActualSpeedOverground == nil || w.ProposedSpeedOverground == nil {
		return 0, false
	}
	d := *w.ActualSpeedOverground - *w.ProposedSpeedOverground
	if d < 0 {
		d = -d
	}
	return d, true
}

// SpeedDifference is the location and speed difference of a valid waypoint
type SpeedDifference struct {
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	SpeedDifference *float64 `json:"speedDifference"`
}

// MetricSummary holds the measured values of a valid waypoint
type MetricSummary struct {
	Power                    *float64 `json:"power"`
	FuelConsumption          *float64 `json:"fuelConsumption"`
	ActualSpeedOverground    *float64 `json:"actualSpeedOverground"`
	ProposedSpeedOverground  *float64 `json:"proposedSpeedOverground"`
	PredictedFuelConsumption *float64 `json:"predictedFuelConsumption"`
	SpeedDifference          *float64 `json:"speedDifference"`
}
