package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/internal/service"
	"github.com/jengzang/maritime-metrics-go/pkg/response"
)

// WaypointHandler handles HTTP requests for stored waypoints
type WaypointHandler struct {
	service *service.WaypointService
}

// NewWaypointHandler creates a new waypoint handler
func NewWaypointHandler(service *service.WaypointService) *WaypointHandler {
	return &WaypointHandler{service: service}
}

// GetAll handles GET /api/metrics/all
func (h *WaypointHandler) GetAll(c *gin.Context) {
	waypoints, err := h.service.All(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, waypoints)
}

// GetVesselCodes handles GET /api/metrics/vessel-codes
func (h *WaypointHandler) GetVesselCodes(c *gin.Context) {
	codes, err := h.service.VesselCodes(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, codes)
}

// GetValid handles GET /api/metrics/:vesselCode/valid
func (h *WaypointHandler) GetValid(c *gin.Context) {
	waypoints, err := h.service.Valid(c.Request.Context(), c.Param("vesselCode"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, waypoints)
}

// GetFlagged returns a handler for GET /api/metrics/:vesselCode/<flag>
func (h *WaypointHandler) GetFlagged(flag models.Flag) gin.HandlerFunc {
	return func(c *gin.Context) {
		waypoints, err := h.service.WithFlag(c.Request.Context(), c.Param("vesselCode"), flag)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, waypoints)
	}
}

// GetSpeedDifferences handles GET /api/metrics/:vesselCode/speed-difference
func (h *WaypointHandler) GetSpeedDifferences(c *gin.Context) {
	diffs, err := h.service.SpeedDifferences(c.Request.Context(), c.Param("vesselCode"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, diffs)
}

// GetSummaryMetrics handles GET /api/metrics/:vesselCode/summary-metrics
func (h *WaypointHandler) GetSummaryMetrics(c *gin.Context) {
	var filter models.SummaryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: startDate and endDate are required")
		return
	}

	summaries, err := h.service.Summaries(c.Request.Context(), c.Param("vesselCode"), filter.StartDate, filter.EndDate)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, summaries)
}
