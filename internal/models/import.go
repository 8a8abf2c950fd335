package models

// Problem kinds reported by row diagnostics
const (
	ProblemMissingValue = "missing_value"
	ProblemUnparsable   = "unparsable"
	ProblemOutOfRange   = "out_of_range"
	ProblemDeviation    = "deviation"
	ProblemNegative     = "negative"
	ProblemNoVessel     = "no_vessel_code"
)

// Diagnostic describes one field-level finding produced while classifying a row
type Diagnostic struct {
	Row        int    `json:"row"`
	VesselCode string `json:"vesselCode,omitempty"`
	Field      string `json:"field"`
	Value      string `json:"value,omitempty"`
	Problem    string `json:"problem"`
}

// FlagCounts counts the flags raised over an import
type FlagCounts struct {
	Invalid   int `json:"invalid"`
	Missing   int `json:"missing"`
	BelowZero int `json:"belowZero"`
	Outlier   int `json:"outlier"`
}

// Add counts the flags of a waypoint
func (c *FlagCounts) Add(w Waypoint) {
	if w.IsInvalid {
		c.Invalid++
	}
	if w.IsMissing {
		c.Missing++
	}
	if w.IsBelowZero {
		c.BelowZero++
	}
	if w.IsOutlier {
		c.Outlier++
	}
}

// ImportResult summarizes a completed import
type ImportResult struct {
	BatchID     string       `json:"batchId"`
	RowsRead    int          `json:"rowsRead"`
	RowsStored  int          `json:"rowsStored"`
	RowsDropped int          `json:"rowsDropped"`
	Flags       FlagCounts   `json:"flags"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
