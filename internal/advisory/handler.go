package advisory

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telecare/telecare/internal/platform/auth"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("patient", "clinician"))
	g.POST("/symptom-checks", h.CheckSymptoms)
	g.POST("/assistant/advise", h.AssistantAdvise)
}

type adviseRequest struct {
	Symptoms string `json:"symptoms"`
	Language string `json:"language"`
}

// CheckSymptoms backs the symptom-checker results page. Offline maps to 503
// and an AI failure to 502; the page requires connectivity.
func (h *Handler) CheckSymptoms(c echo.Context) error {
	var req adviseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Symptoms == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symptoms is required")
	}

	payload, err := h.resolver.CheckSymptoms(c.Request().Context(), req.Symptoms, req.Language)
	if errors.Is(err, ErrOffline) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "symptom checker requires connectivity")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, payload)
}

// AssistantAdvise backs the voice assistant. It always answers with a
// payload; degraded results are labeled by their source field.
func (h *Handler) AssistantAdvise(c echo.Context) error {
	var req adviseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Symptoms == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symptoms is required")
	}

	payload, err := h.resolver.AssistantAdvise(c.Request().Context(), req.Symptoms, req.Language)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, payload)
}
