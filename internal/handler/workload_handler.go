package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-proxy-api/internal/models"
	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
	"github.com/noah-isme/sma-proxy-api/pkg/response"
)

type workloadService interface {
	Workload(ctx context.Context, teacherID, date string) (*models.Workload, error)
	Availability(ctx context.Context, teacherID, date string, slot int) (*models.Availability, error)
}

// WorkloadHandler serves the read-only workload and availability queries.
type WorkloadHandler struct {
	service workloadService
}

// NewWorkloadHandler constructs the handler.
func NewWorkloadHandler(service workloadService) *WorkloadHandler {
	return &WorkloadHandler{service: service}
}

// Workload godoc
// @Summary Weekly workload totals for a teacher
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher id"
// @Param date query string false "Any date in the target work week (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/workload [get]
func (h *WorkloadHandler) Workload(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	workload, err := h.service.Workload(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workload, nil)
}

// Availability godoc
// @Summary Availability of a teacher at one date and slot
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher id"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param slot query int true "Period number"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id}/availability [get]
func (h *WorkloadHandler) Availability(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	slot, err := strconv.Atoi(c.Query("slot"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "slot must be a number"))
		return
	}
	availability, err := h.service.Availability(c.Request.Context(), c.Param("id"), date, slot)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}
