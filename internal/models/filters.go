package models

// SummaryFilter represents query parameters for the summary metrics endpoint
type SummaryFilter struct {
	StartDate string `form:"startDate" binding:"required"` // yyyy-MM-ddTHH:mm:ss
	EndDate   string `form:"endDate" binding:"required"`   // yyyy-MM-ddTHH:mm:ss
}

// ComplianceFilter represents query parameters for the compliance comparison
type ComplianceFilter struct {
	VesselCode1 string `form:"vesselCode1" binding:"required"`
	VesselCode2 string `form:"vesselCode2" binding:"required"`
}

// SpeedOutlierFilter represents query parameters for the speed outlier query
type SpeedOutlierFilter struct {
	VesselCode     string   `form:"vesselCode" binding:"required"`
	SpeedThreshold *float64 `form:"speedThreshold" binding:"required"` // ratio, >= 0
}

// FuelOutlierFilter represents query parameters for the fuel outlier query
type FuelOutlierFilter struct {
	VesselCode    string   `form:"vesselCode" binding:"required"`
	FuelThreshold *float64 `form:"fuelThreshold" binding:"required"` // ratio, >= 0
}

// GroupFilter represents query parameters for the consecutive problem groups
type GroupFilter struct {
	ProblemType string `form:"problemType" binding:"required"` // missing, belowzero, outlier
}
