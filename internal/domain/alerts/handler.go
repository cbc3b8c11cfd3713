package alerts

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves the login banner.
type Handler struct {
	renderer *Renderer
	now      func() time.Time
}

// NewHandler creates a new alerts handler.
func NewHandler(r *Renderer) *Handler {
	return &Handler{renderer: r, now: time.Now}
}

// RegisterRoutes registers alert routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/login/banner", h.Banner)
	api.GET("/login/alerts", h.Status)
}

// Banner handles GET /api/v1/login/banner
func (h *Handler) Banner(c echo.Context) error {
	return c.HTML(http.StatusOK, h.renderer.Render(h.now()))
}

// Status handles GET /api/v1/login/alerts
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.renderer.Status(h.now()))
}
