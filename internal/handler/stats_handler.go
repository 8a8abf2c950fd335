package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/internal/service"
	"github.com/jengzang/maritime-metrics-go/pkg/response"
)

// StatsHandler handles HTTP requests for statistics
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetProblemFrequencies handles GET /api/metrics/:vesselCode/problems/frequencies
func (h *StatsHandler) GetProblemFrequencies(c *gin.Context) {
	frequencies, err := h.statsService.ProblemFrequencies(c.Request.Context(), c.Param("vesselCode"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, frequencies)
}

// GetProblemGroups handles GET /api/metrics/:vesselCode/problems/groups
func (h *StatsHandler) GetProblemGroups(c *gin.Context) {
	var filter models.GroupFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: problemType is required")
		return
	}

	groups, err := h.statsService.ConsecutiveProblemGroups(c.Request.Context(), c.Param("vesselCode"), filter.ProblemType)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, groups)
}

// GetSpeedDeviationSummary handles GET /api/metrics/:vesselCode/speed-difference/summary
func (h *StatsHandler) GetSpeedDeviationSummary(c *gin.Context) {
	summary, err := h.statsService.SpeedDeviationSummary(c.Request.Context(), c.Param("vesselCode"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, summary)
}

// GetMoreCompliant handles GET /api/metrics/more-compliant
func (h *StatsHandler) GetMoreCompliant(c *gin.Context) {
	var filter models.ComplianceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: vesselCode1 and vesselCode2 are required")
		return
	}

	result, err := h.statsService.CompareCompliance(c.Request.Context(), filter.VesselCode1, filter.VesselCode2)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"result": result})
}

// GetSpeedOutliers handles GET /api/metrics/outliers/speed
func (h *StatsHandler) GetSpeedOutliers(c *gin.Context) {
	var filter models.SpeedOutlierFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: vesselCode and numeric speedThreshold are required")
		return
	}

	waypoints, err := h.statsService.SpeedOutliers(c.Request.Context(), filter.VesselCode, *filter.SpeedThreshold)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, waypoints)
}

// GetFuelOutliers handles GET /api/metrics/outliers/fuel
func (h *StatsHandler) GetFuelOutliers(c *gin.Context) {
	var filter models.FuelOutlierFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: vesselCode and numeric fuelThreshold are required")
		return
	}

	waypoints, err := h.statsService.FuelOutliers(c.Request.Context(), filter.VesselCode, *filter.FuelThreshold)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, waypoints)
}
