package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/service"
	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
	"github.com/noah-isme/sma-proxy-api/pkg/response"
)

type substitutionService interface {
	Scan(ctx context.Context, req service.ScanRequest) ([]models.SubstitutionRecord, error)
	List(ctx context.Context, filter models.SubstitutionFilter) ([]models.SubstitutionRecord, error)
	Candidates(ctx context.Context, vacancyID string) ([]models.Candidate, error)
	Commit(ctx context.Context, vacancyID string, req service.CommitRequest) (*models.SubstitutionRecord, error)
	ApplyProposals(ctx context.Context, req service.ApplyProposalsRequest) ([]service.ProposalOutcome, error)
}

// SubstitutionHandler exposes vacancy scanning, candidate ranking and the
// commit pipeline over HTTP.
type SubstitutionHandler struct {
	service substitutionService
}

// NewSubstitutionHandler constructs the handler.
func NewSubstitutionHandler(service substitutionService) *SubstitutionHandler {
	return &SubstitutionHandler{service: service}
}

// Scan godoc
// @Summary Scan a date for vacancies left by absent teachers
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param payload body service.ScanRequest true "Scan target"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /substitutions/scan [post]
func (h *SubstitutionHandler) Scan(c *gin.Context) {
	var req service.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid scan payload"))
		return
	}
	created, err := h.service.Scan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, created, nil, map[string]interface{}{"created": len(created)})
}

// List godoc
// @Summary List substitution records
// @Tags Substitutions
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param section query string false "Section wing filter"
// @Param includeArchived query bool false "Include archived records"
// @Param pending query bool false "Only unresolved vacancies"
// @Success 200 {object} response.Envelope
// @Router /substitutions [get]
func (h *SubstitutionHandler) List(c *gin.Context) {
	filter := models.SubstitutionFilter{
		Section:         strings.TrimSpace(c.Query("section")),
		IncludeArchived: c.Query("includeArchived") == "true",
		OnlyPending:     c.Query("pending") == "true",
	}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
			return
		}
		parsed = parsed.UTC()
		filter.Date = &parsed
	}
	records, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Candidates godoc
// @Summary Rank substitute candidates for a vacancy
// @Tags Substitutions
// @Produce json
// @Param id path string true "Vacancy id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /substitutions/{id}/candidates [get]
func (h *SubstitutionHandler) Candidates(c *gin.Context) {
	candidates, err := h.service.Candidates(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}

// Commit godoc
// @Summary Assign a substitute teacher to a vacancy
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param id path string true "Vacancy id"
// @Param payload body service.CommitRequest true "Chosen substitute"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /substitutions/{id}/commit [post]
func (h *SubstitutionHandler) Commit(c *gin.Context) {
	var req service.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid commit payload"))
		return
	}
	record, err := h.service.Commit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// ApplyProposals godoc
// @Summary Apply advisory substitute proposals for a date
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param payload body service.ApplyProposalsRequest true "Proposal date"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /substitutions/proposals/apply [post]
func (h *SubstitutionHandler) ApplyProposals(c *gin.Context) {
	var req service.ApplyProposalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid proposals payload"))
		return
	}
	outcomes, err := h.service.ApplyProposals(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcomes, nil)
}
