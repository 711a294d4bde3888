package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/service"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
	"github.com/vigilo-hq/workforce-api/pkg/response"
)

// EmployeeHandler handles employee endpoints.
type EmployeeHandler struct {
	service *service.EmployeeService
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(svc *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: svc}
}

// List godoc
// @Summary List employees
// @Description List employees with pagination and filtering
// @Tags Employees
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param despacho_id query int false "Office filter"
// @Param terminated query bool false "Termination filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /empleados [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	var filter models.EmployeeFilter

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	if office := c.Query("despacho_id"); office != "" {
		if id, err := strconv.ParseInt(office, 10, 64); err == nil {
			filter.OfficeID = &id
		}
	}
	if terminated := c.Query("terminated"); terminated != "" {
		if val, err := strconv.ParseBool(terminated); err == nil {
			filter.Terminated = &val
		}
	}

	filter.Search = c.Query("search")
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	employees, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, employees, pagination)
}

// Get godoc
// @Summary Get employee
// @Tags Employees
// @Produce json
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /empleados/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	employee, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, employee, nil)
}

// Create godoc
// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body service.EmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /empleados [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	employee, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, employee)
}

// Update godoc
// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path int true "Employee ID"
// @Param payload body service.EmployeeRequest true "Employee payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /empleados/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	employee, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, employee, nil)
}

// Terminate godoc
// @Summary Terminate employee
// @Description Marks the employee as terminated as of now
// @Tags Employees
// @Produce json
// @Param id path int true "Employee ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /empleados/{id}/baja [post]
func (h *EmployeeHandler) Terminate(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Terminate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListPositions godoc
// @Summary List positions
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /puestos [get]
func (h *EmployeeHandler) ListPositions(c *gin.Context) {
	positions, err := h.service.ListPositions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, positions, nil)
}
