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

// StatsHandler handles daily and ranged statistics endpoints.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Daily godoc
// @Summary Daily attendance statistics
// @Description Counters for a single day, today by default
// @Tags Statistics
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD)"
// @Param despacho_id query int false "Office filter"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /estadisticas/diarias [get]
func (h *StatsHandler) Daily(c *gin.Context) {
	day := time.Now()
	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date"))
			return
		}
		day = parsed
	}

	var officeID *int64
	if office := c.Query("despacho_id"); office != "" {
		id, err := strconv.ParseInt(office, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid despacho_id"))
			return
		}
		officeID = &id
	}

	stats, err := h.service.Daily(c.Request.Context(), day, officeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// Range godoc
// @Summary Ranged attendance report
// @Description Detail rows for a report type over a date range
// @Tags Statistics
// @Produce json
// @Param type query string true "Report type"
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Param despacho_id query int false "Office filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /estadisticas/rango [get]
func (h *StatsHandler) Range(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start_date"))
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end_date"))
		return
	}

	filter := models.StatsRangeFilter{
		Type:      models.StatsReportType(c.Query("type")),
		StartDate: start,
		EndDate:   end,
	}

	if office := c.Query("despacho_id"); office != "" {
		id, err := strconv.ParseInt(office, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid despacho_id"))
			return
		}
		filter.OfficeID = &id
	}

	report, err := h.service.Range(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}
