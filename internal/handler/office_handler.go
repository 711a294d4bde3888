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

// OfficeHandler handles office endpoints, including QR token rotation.
type OfficeHandler struct {
	service *service.OfficeService
}

// NewOfficeHandler creates a new office handler.
func NewOfficeHandler(svc *service.OfficeService) *OfficeHandler {
	return &OfficeHandler{service: svc}
}

// List godoc
// @Summary List offices
// @Tags Offices
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /despachos [get]
func (h *OfficeHandler) List(c *gin.Context) {
	var filter models.OfficeFilter

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	filter.Search = c.Query("search")
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	offices, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, offices, pagination)
}

// Get godoc
// @Summary Get office
// @Tags Offices
// @Produce json
// @Param id path int true "Office ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /despachos/{id} [get]
func (h *OfficeHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	office, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, office, nil)
}

// Create godoc
// @Summary Create office
// @Tags Offices
// @Accept json
// @Produce json
// @Param payload body service.OfficeRequest true "Office payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /despachos [post]
func (h *OfficeHandler) Create(c *gin.Context) {
	var req service.OfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	office, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, office)
}

// Update godoc
// @Summary Update office
// @Tags Offices
// @Accept json
// @Produce json
// @Param id path int true "Office ID"
// @Param payload body service.OfficeRequest true "Office payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /despachos/{id} [put]
func (h *OfficeHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.OfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	office, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, office, nil)
}

// RotateQR godoc
// @Summary Rotate office QR token
// @Description Invalidates the current QR token and issues a new one
// @Tags Offices
// @Produce json
// @Param id path int true "Office ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /despachos/{id}/qr [post]
func (h *OfficeHandler) RotateQR(c *gin.Context) {
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

	office, err := h.service.RotateQRToken(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, office, nil)
}

// Delete godoc
// @Summary Delete office
// @Tags Offices
// @Produce json
// @Param id path int true "Office ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /despachos/{id} [delete]
func (h *OfficeHandler) Delete(c *gin.Context) {
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
