package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"listky/internal/errors"
	"listky/internal/model"
	"listky/internal/service"
)

// ListHandler handles list CRUD and the public view path.
type ListHandler struct {
	listService service.ListService
	viewService service.ViewService
	viewWindow  int // days, for the unique_views figure on public reads
}

// NewListHandler creates a new list handler.
func NewListHandler(listService service.ListService, viewService service.ViewService, viewWindow int) *ListHandler {
	return &ListHandler{
		listService: listService,
		viewService: viewService,
		viewWindow:  viewWindow,
	}
}

// CreateListRequest represents a list creation request.
type CreateListRequest struct {
	Slug       string `json:"slug" validate:"required"`
	Title      string `json:"title" validate:"required,max=255"`
	Content    string `json:"content"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=public private"`
}

// UpdateListRequest represents a list update request.
type UpdateListRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	Content    string `json:"content"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=public private"`
}

// ListResponse represents a list on the public view path.
type ListResponse struct {
	List        *model.List `json:"list"`
	UniqueViews int64       `json:"unique_views"`
}

// ProfileResponse represents a user's public profile.
type ProfileResponse struct {
	Username string       `json:"username"`
	Lists    []model.List `json:"lists"`
}

// Create godoc
// @Summary Create a list
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateListRequest true "List data"
// @Success 201 {object} model.List
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /me/lists [post]
func (h *ListHandler) Create(c echo.Context) error {
	var req CreateListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	owner := sessionUsername(c)
	list, err := h.listService.Create(c.Request().Context(), owner, req.Slug, req.Title, req.Content, model.Visibility(req.Visibility))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, list)
}

// Get godoc
// @Summary View a list at its public URL
// @Tags lists
// @Produce json
// @Param username path string true "Owner username"
// @Param slug path string true "List slug"
// @Success 200 {object} ListResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /{username}/{slug} [get]
func (h *ListHandler) Get(c echo.Context) error {
	owner := c.Param("username")
	slug := c.Param("slug")
	viewer := sessionUsername(c) // empty for anonymous viewers

	ctx := c.Request().Context()
	list, err := h.listService.Resolve(ctx, owner, slug, viewer)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	// View tracking is best-effort: it must never break the read path.
	if list.Public() {
		if _, err := h.viewService.RecordView(ctx, list.ID, c.RealIP(), time.Now()); err != nil {
			c.Logger().Warnf("record view for %s/%s: %v", owner, slug, err)
		}
	}

	views, err := h.viewService.RecentViewCount(ctx, list.ID, time.Now(), h.viewWindow)
	if err != nil {
		c.Logger().Warnf("count views for %s/%s: %v", owner, slug, err)
		views = 0
	}

	return c.JSON(http.StatusOK, ListResponse{
		List:        list,
		UniqueViews: views,
	})
}

// Profile godoc
// @Summary View a user's public profile
// @Description Lists the user's public lists. Private lists are never included.
// @Tags lists
// @Produce json
// @Param username path string true "Owner username"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /{username} [get]
func (h *ListHandler) Profile(c echo.Context) error {
	owner := c.Param("username")
	lists, err := h.listService.PublicByOwner(c.Request().Context(), owner)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, ProfileResponse{
		Username: owner,
		Lists:    lists,
	})
}

// Update godoc
// @Summary Update one of the authenticated user's lists
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "List slug"
// @Param request body UpdateListRequest true "List data"
// @Success 200 {object} model.List
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me/lists/{slug} [put]
func (h *ListHandler) Update(c echo.Context) error {
	var req UpdateListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	owner := sessionUsername(c)
	list, err := h.listService.Update(c.Request().Context(), owner, c.Param("slug"), req.Title, req.Content, model.Visibility(req.Visibility))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, list)
}

// Delete godoc
// @Summary Delete one of the authenticated user's lists
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param slug path string true "List slug"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me/lists/{slug} [delete]
func (h *ListHandler) Delete(c echo.Context) error {
	owner := sessionUsername(c)
	if err := h.listService.Delete(c.Request().Context(), owner, c.Param("slug")); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "list deleted",
	})
}

// Mine godoc
// @Summary List the authenticated user's lists
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.List
// @Failure 401 {object} errors.ErrorResponse
// @Router /me/lists [get]
func (h *ListHandler) Mine(c echo.Context) error {
	owner := sessionUsername(c)
	lists, err := h.listService.ListByOwner(c.Request().Context(), owner)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, lists)
}
