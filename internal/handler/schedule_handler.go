package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/service"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
	"github.com/vigilo-hq/workforce-api/pkg/response"
)

// ScheduleHandler handles weekly schedule endpoints. Every read goes
// through reconciliation, so responses always carry seven days.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// GetEmployeeWeek godoc
// @Summary Get an employee's weekly schedule
// @Description Returns the full seven-day week, filling unassigned days with the default shift
// @Tags Schedules
// @Produce json
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /horarios/empleado/{id} [get]
func (h *ScheduleHandler) GetEmployeeWeek(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	week, err := h.service.GetEmployeeWeek(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"employee_id": id, "entries": week.Entries()}, nil)
}

// UpdateEmployeeWeek godoc
// @Summary Replace an employee's weekly schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Employee ID"
// @Param payload body models.WeekUpdate true "Week payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /horarios/empleado/{id} [patch]
func (h *ScheduleHandler) UpdateEmployeeWeek(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.WeekUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	week, err := h.service.UpdateEmployeeWeek(c.Request.Context(), id, req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"employee_id": id, "entries": week.Entries()}, nil)
}

// GetOfficeWeeks godoc
// @Summary Get the weekly schedule grid for an office
// @Description Returns every active employee of the office with a reconciled seven-day week
// @Tags Schedules
// @Produce json
// @Param id path int true "Office ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /horarios/despacho/{id} [get]
func (h *ScheduleHandler) GetOfficeWeeks(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	weeks, err := h.service.GetOfficeWeeks(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, weeks, nil)
}

// UpdateOfficeWeeks godoc
// @Summary Replace weekly schedules for several employees of an office
// @Description Applies all updates in a single transaction
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Office ID"
// @Param payload body []models.EmployeeWeekUpdate true "Bulk week payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /horarios/despacho/{id} [patch]
func (h *ScheduleHandler) UpdateOfficeWeeks(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var updates []models.EmployeeWeekUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	weeks, err := h.service.UpdateOfficeWeeks(c.Request.Context(), id, updates, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, weeks, nil)
}
