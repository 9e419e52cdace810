package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rohitbihal/smart-classroom-api/internal/service"
	"github.com/rohitbihal/smart-classroom-api/pkg/response"
)

// AnalyticsHandler exposes timetable analytics endpoints.
type AnalyticsHandler struct {
	analytics          *service.AnalyticsService
	defaultInstitution string
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, defaultInstitution string) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, defaultInstitution: defaultInstitution}
}

// RoomAvailability godoc
// @Summary Per-room, per-slot occupancy grid for one weekday
// @Tags Analytics
// @Produce json
// @Param day query string true "Weekday"
// @Param rooms query string false "Comma-separated room numbers"
// @Success 200 {object} response.Envelope
// @Router /analytics/room-availability [get]
func (h *AnalyticsHandler) RoomAvailability(c *gin.Context) {
	var rooms []string
	for _, raw := range c.QueryArray("rooms") {
		for _, number := range strings.Split(raw, ",") {
			if number = strings.TrimSpace(number); number != "" {
				rooms = append(rooms, number)
			}
		}
	}
	grid, err := h.analytics.RoomAvailability(c.Request.Context(), institutionID(c, h.defaultInstitution), c.Query("day"), rooms)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// FacultyWorkload godoc
// @Summary Scheduled hours against capacity per faculty member
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/faculty-workload [get]
func (h *AnalyticsHandler) FacultyWorkload(c *gin.Context) {
	workloads, err := h.analytics.FacultyWorkload(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workloads, nil)
}

// RoomUtilization godoc
// @Summary Scheduled slots against weekly capacity per room
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/room-utilization [get]
func (h *AnalyticsHandler) RoomUtilization(c *gin.Context) {
	usage, err := h.analytics.RoomUtilization(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, usage, nil)
}

// EquipmentUtilization godoc
// @Summary Usage of equipped rooms per capability
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/equipment-utilization [get]
func (h *AnalyticsHandler) EquipmentUtilization(c *gin.Context) {
	usage, err := h.analytics.EquipmentUtilization(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, usage, nil)
}

// Unscheduled godoc
// @Summary Sessions the generator could not place
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/unscheduled [get]
func (h *AnalyticsHandler) Unscheduled(c *gin.Context) {
	report, err := h.analytics.UnscheduledReport(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Reconciliation godoc
// @Summary Resolve timetable display names back to entity ids
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/reconciliation [get]
func (h *AnalyticsHandler) Reconciliation(c *gin.Context) {
	result, err := h.analytics.Reconcile(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
