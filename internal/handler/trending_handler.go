package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"listky/internal/errors"
	"listky/internal/service"
)

// TrendingHandler handles the trending ranking endpoint.
type TrendingHandler struct {
	trendingService service.TrendingService
}

// NewTrendingHandler creates a new trending handler.
func NewTrendingHandler(trendingService service.TrendingService) *TrendingHandler {
	return &TrendingHandler{trendingService: trendingService}
}

// Trending godoc
// @Summary Top public lists by recent unique views
// @Tags trending
// @Produce json
// @Param limit query int false "Maximum entries (default 10)"
// @Param window query int false "Trailing window in days (default 7)"
// @Success 200 {array} repository.TrendingEntry
// @Failure 500 {object} errors.ErrorResponse
// @Router /trending [get]
func (h *TrendingHandler) Trending(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	window, _ := strconv.Atoi(c.QueryParam("window"))

	entries, err := h.trendingService.TopPublicLists(c.Request().Context(), limit, window)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, entries)
}
