package resultdisplay

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/querybuilder/internal/platform/auth"
)

// DisplayRequest is a raw result value to render.
type DisplayRequest struct {
	Value      string `json:"value"`
	Obfuscated bool   `json:"obfuscated"`
}

// DisplayResponse is the rendered value and its style class.
type DisplayResponse struct {
	Display string `json:"display"`
	Style   string `json:"style"`
}

// Handler provides REST endpoints for rendering query result counts.
type Handler struct {
	formatter *Formatter
}

// NewHandler creates a new result display handler.
func NewHandler(f *Formatter) *Handler {
	return &Handler{formatter: f}
}

// RegisterRoutes registers result display routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/results/display", h.Display)
}

// Display handles POST /api/v1/results/display. The caller's roles come
// from the authenticated request.
func (h *Handler) Display(c echo.Context) error {
	var req DisplayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	roles := auth.RolesFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, DisplayResponse{
		Display: h.formatter.Display(req.Value, roles, req.Obfuscated),
		Style:   h.formatter.Style(req.Value),
	})
}
