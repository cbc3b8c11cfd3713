package collision

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/querybuilder/internal/domain/ontology"
)

// Handler provides REST endpoints for query group drop checks.
type Handler struct {
	svc *Service
}

// NewHandler creates a new collision handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers collision routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/query-groups/check", h.CheckDrop)
}

// CheckDrop handles POST /api/v1/query-groups/check
func (h *Handler) CheckDrop(c echo.Context) error {
	var req DropRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Candidate.SDX.ControlCell == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "candidate sdx control_cell is required")
	}
	if req.Candidate.SDX.ControlCell == CellOntology && req.Candidate.key() == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "candidate concept key is required")
	}

	result, err := h.svc.CheckDrop(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ontology.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"allowed":          result.Allowed,
		"verdict":          result.Verdict,
		"code":             int(result.Verdict),
		"title":            result.Title,
		"message":          result.Message,
		"new_concept":      result.NewConcept,
		"existing_concept": result.ExistingConcept,
	})
}
