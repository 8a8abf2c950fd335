package classify

import (
	"github.com/jengzang/maritime-metrics-go/internal/models"
)

// Column positions of the tabular import format
const (
	ColVesselCode = iota
	ColDatetime
	ColLatitude
	ColLongitude
	ColPower
	ColFuelConsumption
	ColActualSpeed
	ColProposedSpeed
	ColPredictedFuel
	ColumnCount
)

// ColumnNames names each column for diagnostics
var ColumnNames = [ColumnCount]string{
	"vesselCode",
	"datetime",
	"latitude",
	"longitude",
	"power",
	"fuelConsumption",
	"actualSpeedOverground",
	"proposedSpeedOverground",
	"predictedFuelConsumption",
}

// Row is one record in column order, values already unquoted and trimmed
type Row [ColumnCount]string

// Thresholds bound the cross-field deviation checks
type Thresholds struct {
	SpeedDeviationRatio float64 // |actual - proposed| / actual
	FuelDeviationRatio  float64 // |fuel - predicted| / fuel
}

// DefaultThresholds flags deviations above 50%
var DefaultThresholds = Thresholds{
	SpeedDeviationRatio: 0.5,
	FuelDeviationRatio:  0.5,
}

// Result is the classification of one row
type Result struct {
	Waypoint    models.Waypoint
	Diagnostics []models.Diagnostic
}

// Classifier applies the field validators, cross-field checks and derived metrics to rows
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(thresholds Thresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Classify classifies one row. line is the 1-based source line used in diagnostics.
// The second result is false when the row has no vessel code and must be dropped.
func (c *Classifier) Classify(line int, row Row) (Result, bool) {
	code, ok := VesselCode(row[ColVesselCode])
	if !ok {
		return Result{Diagnostics: []models.Diagnostic{{
			Row:     line,
			Field:   ColumnNames[ColVesselCode],
			Problem: models.ProblemNoVessel,
		}}}, false
	}

	var (
		diags []models.Diagnostic
		flags Flags
	)
	note := func(col int, problem string) {
		if problem == "" {
			return
		}
		diags = append(diags, models.Diagnostic{
			Row:        line,
			VesselCode: code,
			Field:      ColumnNames[col],
			Value:      row[col],
			Problem:    problem,
		})
	}
	number := func(col int, f Field[float64]) *float64 {
		note(col, f.Problem)
		flags = flags.Or(f.Flags)
		if f.Value != nil && *f.Value < 0 && col >= ColPower {
			note(col, models.ProblemNegative)
		}
		return f.Value
	}

	ts := Timestamp(row[ColDatetime])
	note(ColDatetime, ts.Problem)
	flags = flags.Or(ts.Flags)

	w := models.Waypoint{
		VesselCode:               code,
		Datetime:                 ts.Value,
		Latitude:                 number(ColLatitude, Latitude(row[ColLatitude])),
		Longitude:                number(ColLongitude, Longitude(row[ColLongitude])),
		Power:                    number(ColPower, Number(row[ColPower])),
		FuelConsumption:          number(ColFuelConsumption, Number(row[ColFuelConsumption])),
		ActualSpeedOverground:    number(ColActualSpeed, Number(row[ColActualSpeed])),
		ProposedSpeedOverground:  number(ColProposedSpeed, Number(row[ColProposedSpeed])),
		PredictedFuelConsumption: number(ColPredictedFuel, Number(row[ColPredictedFuel])),
	}

	if Deviates(w.ActualSpeedOverground, w.ProposedSpeedOverground, c.thresholds.SpeedDeviationRatio) {
		flags.Outlier = true
		note(ColProposedSpeed, models.ProblemDeviation)
	}
	if Deviates(w.FuelConsumption, w.PredictedFuelConsumption, c.thresholds.FuelDeviationRatio) {
		flags.Outlier = true
		note(ColPredictedFuel, models.ProblemDeviation)
	}

	return Result{Waypoint: Finalize(w, flags), Diagnostics: diags}, true
}
