package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/service"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
	"github.com/vigilo-hq/workforce-api/pkg/response"
)

// AttendanceHandler handles QR scan and attendance listing endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
	metrics *service.MetricsService
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(svc *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, metrics: metrics}
}

// Scan godoc
// @Summary Register attendance via QR scan
// @Description First scan of the day opens the attendance, the second one closes it
// @Tags Attendances
// @Accept json
// @Produce json
// @Param payload body service.CheckInRequest true "Scan payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /asistencias/scan [post]
func (h *AttendanceHandler) Scan(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.EmployeeID == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "user has no linked employee"))
		return
	}

	var req service.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.Scan(c.Request.Context(), *claims.EmployeeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordScan(result.Action)
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List attendance records
// @Description List attendances with pagination and filtering
// @Tags Attendances
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param empleado_id query int false "Employee filter"
// @Param despacho_id query int false "Office filter"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /asistencias [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	var filter models.AttendanceFilter

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	if employee := c.Query("empleado_id"); employee != "" {
		if id, err := strconv.ParseInt(employee, 10, 64); err == nil {
			filter.EmployeeID = &id
		}
	}
	if office := c.Query("despacho_id"); office != "" {
		if id, err := strconv.ParseInt(office, 10, 64); err == nil {
			filter.OfficeID = &id
		}
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date"))
			return
		}
		filter.DateFrom = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid to date"))
			return
		}
		filter.DateTo = &t
	}

	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	// Agents only ever see their own records.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleAgent {
		if claims.EmployeeID == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "user has no linked employee"))
			return
		}
		filter.EmployeeID = claims.EmployeeID
	}

	records, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, records, pagination)
}
