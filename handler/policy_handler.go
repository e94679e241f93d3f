// ABOUTME: HTTP handlers for the blocked-language policy configuration push
// ABOUTME: Wholesale replacement only; reads exposed for operational visibility

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// PolicyStore exposes the language policy to the configuration surface.
type PolicyStore interface {
	ReplacePolicy(ctx context.Context, codes []string)
	CurrentPolicy(ctx context.Context) []string
}

// PolicyRequest is the configuration push payload.
type PolicyRequest struct {
	LanguageCodes []string `json:"language_codes"`
}

// PolicyResponse carries the current blocked-language set.
type PolicyResponse struct {
	LanguageCodes []string `json:"language_codes"`
}

// PolicyHandler handles policy configuration HTTP requests
type PolicyHandler struct {
	store  PolicyStore
	logger *slog.Logger
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(store PolicyStore, logger *slog.Logger) *PolicyHandler {
	return &PolicyHandler{
		store:  store,
		logger: logger,
	}
}

// Replace handles PUT /v1/policy/languages. The pushed set replaces the
// previous one wholesale; no acknowledgment beyond the status code.
func (h *PolicyHandler) Replace(c echo.Context) error {
	var req PolicyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
	}

	h.store.ReplacePolicy(c.Request().Context(), req.LanguageCodes)
	return c.NoContent(http.StatusNoContent)
}

// Current handles GET /v1/policy/languages
func (h *PolicyHandler) Current(c echo.Context) error {
	codes := h.store.CurrentPolicy(c.Request().Context())
	return c.JSON(http.StatusOK, PolicyResponse{LanguageCodes: codes})
}
