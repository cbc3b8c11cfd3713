package infobutton

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Handler serves domain help.
type Handler struct {
	svc *Service
}

// NewHandler creates a new InfoButton handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers InfoButton routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/ontology/info/:domain", h.Info)
}

// Info handles GET /api/v1/ontology/info/:domain
func (h *Handler) Info(c echo.Context) error {
	domain := strings.TrimSpace(c.Param("domain"))
	if domain == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "domain is required")
	}
	info := h.svc.Lookup(domain)
	switch {
	case strings.HasPrefix(info.ErrorCode, CodeUnavailable):
		return c.JSON(http.StatusServiceUnavailable, info)
	case strings.HasPrefix(info.ErrorCode, CodeUnknownDomain):
		return c.JSON(http.StatusNotFound, info)
	}
	return c.JSON(http.StatusOK, info)
}
