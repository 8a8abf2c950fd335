package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/maritime-metrics-go/internal/models"
	"github.com/jengzang/maritime-metrics-go/internal/service"
	"github.com/jengzang/maritime-metrics-go/pkg/response"
)

// ImportHandler handles tabular uploads
type ImportHandler struct {
	service        *service.ImportService
	maxUploadBytes int64
}

// NewImportHandler creates a new import handler. maxUploadBytes bounds the request body.
func NewImportHandler(service *service.ImportService, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// Import handles POST /api/csv/import
func (h *ImportHandler) Import(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		response.BadRequest(c, "Missing file parameter")
		return
	}
	if header.Size == 0 {
		response.BadRequest(c, "Please upload a non-empty file")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	result, err := h.service.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, result)
}

// GetHistory handles GET /api/csv/imports
func (h *ImportHandler) GetHistory(c *gin.Context) {
	var filter models.ImportBatchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	batches, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, batches)
}
