package classify

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/jengzang/maritime-metrics-go/internal/models"
)

// SpeedDifferencePlaces is the precision of the stored speed difference
const SpeedDifferencePlaces = 6

// RoundHalfUp rounds v to the given decimal places, halves away from zero.
// Non-finite values are returned unchanged.
func RoundHalfUp(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// SpeedDifference computes round6(actual - proposed), or nil if either is absent
func SpeedDifference(actual, proposed *float64) *float64 {
	if actual == nil || proposed == nil {
		return nil
	}
	d := RoundHalfUp(*actual-*proposed, SpeedDifferencePlaces)
	return &d
}

// BelowZero reports whether any present value is negative
func BelowZero(values ...*float64) bool {
	for _, v := range values {
		if v != nil && *v < 0 {
			return true
		}
	}
	return false
}

// Finalize returns a copy of w with the derived metric and all flags set.
// flags carries the validator and cross-field findings; below-zero is evaluated here.
func Finalize(w models.Waypoint, flags Flags) models.Waypoint {
	w.SpeedDifference = SpeedDifference(w.ActualSpeedOverground, w.ProposedSpeedOverground)

	flags.BelowZero = flags.BelowZero || BelowZero(
		w.Power,
		w.FuelConsumption,
		w.ActualSpeedOverground,
		w.ProposedSpeedOverground,
		w.PredictedFuelConsumption,
	)

	w.IsMissing = flags.Missing
	w.IsBelowZero = flags.BelowZero
	w.IsOutlier = flags.Outlier
	w.IsInvalid = flags.Invalid()
	return w
}
