package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/maritime-metrics-go/internal/models"
)

func cleanRow() Row {
	return Row{"V1", "2023-06-01 00:00:00", "51.5", "-0.12", "1200", "10", "12", "11", "10.5"}
}

func TestClassifier_CleanRow(t *testing.T) {
	res, ok := NewClassifier(DefaultThresholds).Classify(2, cleanRow())
	require.True(t, ok)

	w := res.Waypoint
	assert.Equal(t, "V1", w.VesselCode)
	require.NotNil(t, w.Datetime)
	assert.Equal(t, 51.5, *w.Latitude)
	assert.Equal(t, 1200.0, *w.Power)
	require.NotNil(t, w.SpeedDifference)
	assert.Equal(t, 1.0, *w.SpeedDifference)
	assert.False(t, w.IsMissing)
	assert.False(t, w.IsBelowZero)
	assert.False(t, w.IsOutlier)
	assert.False(t, w.IsInvalid)
	assert.Empty(t, res.Diagnostics)
}

func TestClassifier_DropsRowWithoutVesselCode(t *testing.T) {
	row := cleanRow()
	row[ColVesselCode] = ""

	res, ok := NewClassifier(DefaultThresholds).Classify(7, row)
	assert.False(t, ok)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 7, res.Diagnostics[0].Row)
	assert.Equal(t, models.ProblemNoVessel, res.Diagnostics[0].Problem)
}

func TestClassifier_Flags(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *Row)
		missing   bool
		belowZero bool
		outlier   bool
		fields    []string
	}{
		{
			name:    "missing timestamp",
			mutate:  func(r *Row) { r[ColDatetime] = "NULL" },
			missing: true,
			fields:  []string{"datetime"},
		},
		{
			name:    "unparsable power",
			mutate:  func(r *Row) { r[ColPower] = "lots" },
			missing: true,
			fields:  []string{"power"},
		},
		{
			name:      "negative fuel",
			mutate:    func(r *Row) { r[ColFuelConsumption] = "-1"; r[ColPredictedFuel] = "-1" },
			belowZero: true,
			fields:    []string{"fuelConsumption", "predictedFuelConsumption"},
		},
		{
			name:    "latitude out of range",
			mutate:  func(r *Row) { r[ColLatitude] = "95" },
			outlier: true,
			fields:  []string{"latitude"},
		},
		{
			name:    "speed deviation",
			mutate:  func(r *Row) { r[ColProposedSpeed] = "30" },
			outlier: true,
			fields:  []string{"proposedSpeedOverground"},
		},
		{
			name:    "fuel deviation",
			mutate:  func(r *Row) { r[ColPredictedFuel] = "2" },
			outlier: true,
			fields:  []string{"predictedFuelConsumption"},
		},
		{
			name:    "zero actual speed with movement proposed",
			mutate:  func(r *Row) { r[ColActualSpeed] = "0" },
			outlier: true,
			fields:  []string{"proposedSpeedOverground"},
		},
		{
			name:      "several problems at once",
			mutate:    func(r *Row) { r[ColLongitude] = ""; r[ColPower] = "-5"; r[ColLatitude] = "-100" },
			missing:   true,
			belowZero: true,
			outlier:   true,
			fields:    []string{"latitude", "longitude", "power"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := cleanRow()
			tt.mutate(&row)

			res, ok := NewClassifier(DefaultThresholds).Classify(3, row)
			require.True(t, ok)

			w := res.Waypoint
			assert.Equal(t, tt.missing, w.IsMissing, "missing")
			assert.Equal(t, tt.belowZero, w.IsBelowZero, "belowZero")
			assert.Equal(t, tt.outlier, w.IsOutlier, "outlier")
			assert.Equal(t, w.IsMissing || w.IsBelowZero || w.IsOutlier, w.IsInvalid)

			var fields []string
			for _, d := range res.Diagnostics {
				assert.Equal(t, 3, d.Row)
				assert.Equal(t, "V1", d.VesselCode)
				fields = append(fields, d.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestClassifier_ProposedWithoutActualSkipsDeviation(t *testing.T) {
	row := cleanRow()
	row[ColActualSpeed] = ""
	row[ColProposedSpeed] = "1000"

	res, ok := NewClassifier(DefaultThresholds).Classify(2, row)
	require.True(t, ok)
	assert.True(t, res.Waypoint.IsMissing)
	assert.False(t, res.Waypoint.IsOutlier)
	assert.Nil(t, res.Waypoint.SpeedDifference)
}

func TestClassifier_CustomThresholds(t *testing.T) {
	row := cleanRow() // actual 12, proposed 11: deviation ~0.083

	res, _ := NewClassifier(Thresholds{SpeedDeviationRatio: 0.05, FuelDeviationRatio: 0.5}).Classify(2, row)
	assert.True(t, res.Waypoint.IsOutlier)

	res, _ = NewClassifier(Thresholds{SpeedDeviationRatio: 0.1, FuelDeviationRatio: 0.5}).Classify(2, row)
	assert.False(t, res.Waypoint.IsOutlier)
}
