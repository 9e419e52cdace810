package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rohitbihal/smart-classroom-api/internal/dto"
	"github.com/rohitbihal/smart-classroom-api/internal/models"
	"github.com/rohitbihal/smart-classroom-api/internal/service"
	appErrors "github.com/rohitbihal/smart-classroom-api/pkg/errors"
	"github.com/rohitbihal/smart-classroom-api/pkg/response"
)

// ConstraintHandler exposes the scheduling constraint aggregate.
type ConstraintHandler struct {
	service            *service.ConstraintService
	defaultInstitution string
}

// NewConstraintHandler constructs a constraint handler.
func NewConstraintHandler(svc *service.ConstraintService, defaultInstitution string) *ConstraintHandler {
	return &ConstraintHandler{service: svc, defaultInstitution: defaultInstitution}
}

// Get godoc
// @Summary Get the constraint document
// @Tags Constraints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /constraints [get]
func (h *ConstraintHandler) Get(c *gin.Context) {
	constraints, err := h.service.Get(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraints, nil)
}

// UpdateCategory godoc
// @Summary Replace one constraint category
// @Tags Constraints
// @Accept json
// @Produce json
// @Param category path string true "Constraint category"
// @Param payload body object true "Category payload"
// @Success 200 {object} response.Envelope
// @Router /constraints/{category} [put]
func (h *ConstraintHandler) UpdateCategory(c *gin.Context) {
	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	category := models.ConstraintCategory(c.Param("category"))
	constraints, err := h.service.UpdateCategory(c.Request.Context(), institutionID(c, h.defaultInstitution), category, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraints, nil)
}

// UpsertFacultyPreference godoc
// @Summary Upsert one faculty member's scheduling preference
// @Tags Constraints
// @Accept json
// @Produce json
// @Param payload body dto.UpsertFacultyPreferenceRequest true "Preference payload"
// @Success 200 {object} response.Envelope
// @Router /constraints/faculty-preferences [put]
func (h *ConstraintHandler) UpsertFacultyPreference(c *gin.Context) {
	var req dto.UpsertFacultyPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	constraints, err := h.service.UpsertFacultyPreference(c.Request.Context(), institutionID(c, h.defaultInstitution), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraints, nil)
}

// ListFixedClasses godoc
// @Summary List pinned sessions
// @Tags Constraints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /constraints/fixed-classes [get]
func (h *ConstraintHandler) ListFixedClasses(c *gin.Context) {
	constraints, err := h.service.Get(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraints.FixedClasses, nil)
}

// AddFixedClass godoc
// @Summary Pin a session to a day, slot, and class
// @Tags Constraints
// @Accept json
// @Produce json
// @Param payload body dto.AddFixedClassRequest true "Pin payload"
// @Success 201 {object} response.Envelope
// @Router /constraints/fixed-classes [post]
func (h *ConstraintHandler) AddFixedClass(c *gin.Context) {
	var req dto.AddFixedClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	pin, err := h.service.AddFixedClass(c.Request.Context(), institutionID(c, h.defaultInstitution), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pin)
}

// RemoveFixedClass godoc
// @Summary Remove a pinned session
// @Tags Constraints
// @Produce json
// @Param id path string true "Pin ID"
// @Success 204
// @Router /constraints/fixed-classes/{id} [delete]
func (h *ConstraintHandler) RemoveFixedClass(c *gin.Context) {
	if err := h.service.RemoveFixedClass(c.Request.Context(), institutionID(c, h.defaultInstitution), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCustomConstraints godoc
// @Summary List natural-language constraint rules
// @Tags Constraints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /constraints/custom [get]
func (h *ConstraintHandler) ListCustomConstraints(c *gin.Context) {
	constraints, err := h.service.Get(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraints.CustomConstraints, nil)
}

// CreateCustomConstraint godoc
// @Summary Store a natural-language constraint rule
// @Tags Constraints
// @Accept json
// @Produce json
// @Param payload body dto.CreateCustomConstraintRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Router /constraints/custom [post]
func (h *ConstraintHandler) CreateCustomConstraint(c *gin.Context) {
	var req dto.CreateCustomConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rule, err := h.service.CreateCustomConstraint(c.Request.Context(), institutionID(c, h.defaultInstitution), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// ToggleCustomConstraint godoc
// @Summary Activate or deactivate a stored rule
// @Tags Constraints
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param payload body dto.ToggleCustomConstraintRequest true "Toggle payload"
// @Success 204
// @Router /constraints/custom/{id} [patch]
func (h *ConstraintHandler) ToggleCustomConstraint(c *gin.Context) {
	var req dto.ToggleCustomConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.ToggleCustomConstraint(c.Request.Context(), institutionID(c, h.defaultInstitution), c.Param("id"), req.IsActive); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteCustomConstraint godoc
// @Summary Delete a stored rule
// @Tags Constraints
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204
// @Router /constraints/custom/{id} [delete]
func (h *ConstraintHandler) DeleteCustomConstraint(c *gin.Context) {
	if err := h.service.DeleteCustomConstraint(c.Request.Context(), institutionID(c, h.defaultInstitution), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Validate godoc
// @Summary Validate the constraint document against current entities
// @Tags Constraints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /constraints/validation [get]
func (h *ConstraintHandler) Validate(c *gin.Context) {
	report, err := h.service.Validate(c.Request.Context(), institutionID(c, h.defaultInstitution))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
