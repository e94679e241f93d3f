// ABOUTME: HTTP handler for description publish requests
// ABOUTME: Bridges the synchronous HTTP exchange onto the async publish pipeline

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"description-publisher/models"
)

// Publisher drives one publish attempt and completes via callback.
type Publisher interface {
	Publish(newDescription string, ref models.ArticleReference, completion func(error))
}

// PublishRequest is the inbound payload for a publish call.
type PublishRequest struct {
	Description    string `json:"description" validate:"required"`
	EntityTitle    string `json:"entity_title" validate:"required"`
	LanguageCode   string `json:"language_code" validate:"required"`
	SiteIdentifier string `json:"site_identifier" validate:"required"`
}

// ErrorResponse is the common error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// PublishResponse is returned on success.
type PublishResponse struct {
	Success bool `json:"success"`
}

// PublishHandler handles description publish HTTP requests
type PublishHandler struct {
	publisher Publisher
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewPublishHandler creates a new publish handler
func NewPublishHandler(publisher Publisher, logger *slog.Logger) *PublishHandler {
	return &PublishHandler{
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Publish handles POST /v1/descriptions
func (h *PublishHandler) Publish(c echo.Context) error {
	var req PublishRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
	}

	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
		})
	}

	ref := models.ArticleReference{
		EntityTitle:    req.EntityTitle,
		LanguageCode:   req.LanguageCode,
		SiteIdentifier: req.SiteIdentifier,
	}

	// The pipeline completes exactly once; block this request until it does.
	done := make(chan error, 1)
	h.publisher.Publish(req.Description, ref, func(err error) {
		done <- err
	})

	if err := <-done; err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, PublishResponse{Success: true})
}

func (h *PublishHandler) respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrMalformedTarget):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrPolicyBlocked):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrUnparseableResponse):
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "remote response could not be parsed"})
	}

	var rejected *models.RemoteRejectedError
	if errors.As(err, &rejected) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: rejected.Message,
			Code:  rejected.Code,
		})
	}

	h.logger.Error("publish failed", "error", err)
	return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "publish failed"})
}
