package handler

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rohitbihal/smart-classroom-api/internal/dto"
	"github.com/rohitbihal/smart-classroom-api/internal/service"
	appErrors "github.com/rohitbihal/smart-classroom-api/pkg/errors"
	"github.com/rohitbihal/smart-classroom-api/pkg/response"
)

var exportContentTypes = map[dto.ExportFormat]string{
	dto.ExportCSV: "text/csv",
	dto.ExportPDF: "application/pdf",
}

// TimetableHandler exposes timetable generation and export endpoints.
type TimetableHandler struct {
	generation         *service.GenerationService
	exports            *service.ExportService
	defaultInstitution string
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(generation *service.GenerationService, exports *service.ExportService, defaultInstitution string) *TimetableHandler {
	return &TimetableHandler{generation: generation, exports: exports, defaultInstitution: defaultInstitution}
}

// Generate godoc
// @Summary Run the timetable generator and persist the result
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	result, err := h.generation.Generate(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Current godoc
// @Summary Get the current timetable with its generation status
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Current(c *gin.Context) {
	overview, err := h.generation.Current(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Export godoc
// @Summary Download the timetable synchronously as CSV or PDF
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "Export format (csv or pdf)"
// @Param day query string false "Filter by weekday"
// @Param class query string false "Filter by class name"
// @Success 200 {file} binary
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	format := dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportCSV)))
	data, filename, err := h.exports.Render(
		c.Request.Context(),
		institutionID(c, h.defaultInstitution),
		format,
		c.Query("day"),
		c.Query("class"),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, exportContentTypes[format], data)
}

// CreateExport godoc
// @Summary Enqueue an asynchronous export job
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.CreateExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /timetable/exports [post]
func (h *TimetableHandler) CreateExport(c *gin.Context) {
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	job, err := h.exports.CreateJob(c.Request.Context(), institutionID(c, h.defaultInstitution), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Get the status of an export job
// @Tags Timetable
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/exports/{id} [get]
func (h *TimetableHandler) ExportStatus(c *gin.Context) {
	job, err := h.exports.JobStatus(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// DownloadExport godoc
// @Summary Download a finished export via its signed token
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /timetable/exports/download [get]
func (h *TimetableHandler) DownloadExport(c *gin.Context) {
	file, relPath, err := h.exports.OpenDownload(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	filename := path.Base(relPath)
	contentType := "application/octet-stream"
	format := dto.ExportFormat(strings.TrimPrefix(path.Ext(filename), "."))
	if ct, ok := exportContentTypes[format]; ok {
		contentType = ct
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
