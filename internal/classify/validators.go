// Package classify turns one raw telemetry row into a typed, flagged Waypoint.
//
// Validators never fail a record: an absent or unparsable value degrades to the
// missing flag and a range violation degrades to the outlier flag. Only an empty
// vessel code drops the row.
package classify

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/maritime-metrics-go/internal/models"
)

// Flags are the independent classification flags of a record
type Flags struct {
	Missing   bool
	BelowZero bool
	Outlier   bool
}

// Or merges two flag sets. Flags only ever turn on.
func (f Flags) Or(o Flags) Flags {
	return Flags{
		Missing:   f.Missing || o.Missing,
		BelowZero: f.BelowZero || o.BelowZero,
		Outlier:   f.Outlier || o.Outlier,
	}
}

// Invalid is the disjunction of the three flags
func (f Flags) Invalid() bool {
	return f.Missing || f.BelowZero || f.Outlier
}

// Field is the outcome of validating one textual value
type Field[T any] struct {
	Value   *T
	Flags   Flags
	Problem string // empty when the value is clean
}

// Unquote strips surrounding whitespace and one pair of wrapping double quotes
func Unquote(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimSpace(s)
}

// IsAbsent reports whether a value represents no data
func IsAbsent(raw string) bool {
	return raw == "" || strings.EqualFold(raw, "NULL")
}

// VesselCode validates the vessel identifier. A false result drops the row.
func VesselCode(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	return raw, true
}

// Timestamp parses a yyyy-MM-dd HH:mm:ss value
func Timestamp(raw string) Field[time.Time] {
	if IsAbsent(raw) {
		return missing[time.Time](models.ProblemMissingValue)
	}
	t, err := time.Parse(models.DateTimeLayout, raw)
	if err != nil {
		return missing[time.Time](models.ProblemUnparsable)
	}
	return Field[time.Time]{Value: &t}
}

// Number parses a plain numeric value
func Number(raw string) Field[float64] {
	if IsAbsent(raw) {
		return missing[float64](models.ProblemMissingValue)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return missing[float64](models.ProblemUnparsable)
	}
	return Field[float64]{Value: &v}
}

// Latitude parses a latitude; values outside [-90, 90] are kept and flagged
func Latitude(raw string) Field[float64] {
	return bounded(raw, 90)
}

// Longitude parses a longitude; values outside [-180, 180] are kept and flagged
func Longitude(raw string) Field[float64] {
	return bounded(raw, 180)
}

func bounded(raw string, limit float64) Field[float64] {
	f := Number(raw)
	if f.Value != nil && (*f.Value < -limit || *f.Value > limit) {
		f.Flags.Outlier = true
		f.Problem = models.ProblemOutOfRange
	}
	return f
}

func missing[T any](problem string) Field[T] {
	return Field[T]{Flags: Flags{Missing: true}, Problem: problem}
}

// Deviates reports whether |reference - candidate| / |reference| exceeds limit.
// Nothing is checked unless both values are present. A zero reference deviates
// whenever the candidate differs from it.
func Deviates(reference, candidate *float64, limit float64) bool {
	if reference == nil || candidate == nil {
		return false
	}
	if *reference == 0 {
		return *candidate != 0
	}
	return math.Abs((*reference-*candidate) / *reference) > limit
}
