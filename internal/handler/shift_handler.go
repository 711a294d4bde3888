package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vigilo-hq/workforce-api/internal/middleware"
	"github.com/vigilo-hq/workforce-api/internal/service"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
	"github.com/vigilo-hq/workforce-api/pkg/response"
)

// ShiftHandler handles the shift catalog endpoints.
type ShiftHandler struct {
	service *service.ShiftService
}

// NewShiftHandler creates a new shift handler.
func NewShiftHandler(svc *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{service: svc}
}

// List godoc
// @Summary List shift catalog
// @Description Returns the full shift catalog ordered by start time
// @Tags Shifts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /turnos [get]
func (h *ShiftHandler) List(c *gin.Context) {
	start := time.Now()

	shifts, cacheHit, err := h.service.CatalogCached(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)

	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()

	response.JSON(c, http.StatusOK, shifts, nil, meta)
}

// Get godoc
// @Summary Get shift
// @Tags Shifts
// @Produce json
// @Param id path int true "Shift ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /turnos/{id} [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	shift, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, shift, nil)
}

// Create godoc
// @Summary Create shift
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body service.ShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /turnos [post]
func (h *ShiftHandler) Create(c *gin.Context) {
	var req service.ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	shift, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, shift)
}

// Update godoc
// @Summary Update shift
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path int true "Shift ID"
// @Param payload body service.ShiftRequest true "Shift payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /turnos/{id} [put]
func (h *ShiftHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	shift, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, shift, nil)
}

// Delete godoc
// @Summary Delete shift
// @Description Fails with a conflict when schedules still reference the shift
// @Tags Shifts
// @Produce json
// @Param id path int true "Shift ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /turnos/{id} [delete]
func (h *ShiftHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
