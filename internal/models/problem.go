package models

import (
	"fmt"
	"strings"
	"time"
)

// Flag names one of the classification flags of a waypoint
type Flag string

const (
	FlagInvalid   Flag = "invalid"
	FlagMissing   Flag = "missing"
	FlagBelowZero Flag = "belowzero"
	FlagOutlier   Flag = "outlier"
)

// ParseProblemType maps a caller supplied problem type tag to a flag.
// Only the three problem flags are accepted; "invalid" is not a problem type.
func ParseProblemType(tag string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "missing":
		return FlagMissing, nil
	case "belowzero", "below-zero":
		return FlagBelowZero, nil
	case "outlier":
		return FlagOutlier, nil
	}
	return "", fmt.Errorf("unknown problem type: %q", tag)
}

// Frequency keys
const (
	FrequencyMissing   = "Missing"
	FrequencyBelowZero = "BelowZero"
	FrequencyOutlier   = "Outlier"
	FrequencyInvalid   = "Invalid"
	FrequencyTotal     = "Total"
)

// ProblemFrequency is one entry of the problem frequency table
type ProblemFrequency struct {
	Problem string `json:"problem"`
	Count   int64  `json:"count"`
}

// ProblemGroup is a maximal run of consecutive waypoints sharing a problem
type ProblemGroup struct {
	Size       int        `json:"size"`
	Start      *time.Time `json:"start"`
	End        *time.Time `json:"end"`
	PathMeters float64    `json:"pathMeters"`
	Waypoints  []Waypoint `json:"waypoints"`
}

// SpeedDeviationSummary is the five-number summary of |actual - proposed| for a vessel
type SpeedDeviationSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// ComplianceTie is returned by the compliance comparison when both medians are equal
const ComplianceTie = "equal"
