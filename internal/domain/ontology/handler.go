package ontology

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/querybuilder/internal/platform/auth"
)

// Handler provides REST endpoints for ontology lookups.
type Handler struct {
	svc *Service
}

// NewHandler creates a new ontology handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers ontology routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/ontology/demographic", h.Demographic)

	writeGroup := api.Group("", auth.RequireRole(auth.AdminRole))
	writeGroup.POST("/ontology/concepts", h.UpsertConcepts)
}

// UpsertConceptsRequest carries concepts to store.
type UpsertConceptsRequest struct {
	Concepts []Record `json:"concepts"`
}

// Demographic handles GET /api/v1/ontology/demographic?key=...
func (h *Handler) Demographic(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'key' is required")
	}
	demographic, err := h.svc.IsDemographic(c.Request().Context(), &Node{Key: key})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"key":         key,
		"demographic": demographic,
	})
}

// UpsertConcepts handles POST /api/v1/ontology/concepts
func (h *Handler) UpsertConcepts(c echo.Context) error {
	var req UpsertConceptsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Concepts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "concepts are required")
	}
	for i := range req.Concepts {
		if err := req.Concepts[i].Validate(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	n, err := h.svc.Import(c.Request().Context(), req.Concepts)
	if err != nil {
		if errors.Is(err, ErrReadOnly) {
			return echo.NewHTTPError(http.StatusMethodNotAllowed, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"stored": n})
}
