package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-proxy-api/internal/service"
	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
	"github.com/noah-isme/sma-proxy-api/pkg/response"
)

type lifecycleService interface {
	Archive(ctx context.Context, req service.ArchiveRequest) (*service.ArchiveResult, error)
	Purge(ctx context.Context, id string, confirm bool) error
}

// LifecycleHandler exposes the archive sweep and the permanent purge.
type LifecycleHandler struct {
	service lifecycleService
}

// NewLifecycleHandler constructs the handler.
func NewLifecycleHandler(service lifecycleService) *LifecycleHandler {
	return &LifecycleHandler{service: service}
}

// Archive godoc
// @Summary Archive substitution records for a date
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param payload body service.ArchiveRequest true "Archive scope with confirm flag"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /substitutions/archive [post]
func (h *LifecycleHandler) Archive(c *gin.Context) {
	var req service.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid archive payload"))
		return
	}
	result, err := h.service.Archive(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Purge godoc
// @Summary Permanently delete one substitution record
// @Tags Substitutions
// @Produce json
// @Param id path string true "Substitution id"
// @Param confirm query bool true "Must be true"
// @Success 204 {object} nil
// @Failure 404 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /substitutions/{id} [delete]
func (h *LifecycleHandler) Purge(c *gin.Context) {
	confirm := c.Query("confirm") == "true"
	if err := h.service.Purge(c.Request.Context(), c.Param("id"), confirm); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
