package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/ingest"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/search"
)

// JobsHandler handles job-related API requests
type JobsHandler struct {
	search   *search.Service
	pipeline *ingest.Pipeline
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(searchService *search.Service, pipeline *ingest.Pipeline) *JobsHandler {
	return &JobsHandler{
		search:   searchService,
		pipeline: pipeline,
	}
}

// RegisterRoutes registers the job routes
func (h *JobsHandler) RegisterRoutes(g *echo.Group) {
	jobs := g.Group("/jobs")
	jobs.GET("", h.List)
	jobs.POST("", h.Ingest)
}

// List handles GET /jobs
func (h *JobsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var filter models.JobFilter
	if err := c.Bind(&filter); err != nil {
		return BadRequest("invalid query parameters")
	}

	result, err := h.search.Query(ctx, filter)
	if err != nil {
		if errors.Is(err, search.ErrInvalidFilter) {
			return InvalidFilterError(err.Error())
		}
		return DatabaseError("failed to query jobs")
	}

	return SuccessResponse(c, result)
}

// IngestResponse reports what happened to a directly submitted record.
type IngestResponse struct {
	Outcome ingest.Outcome `json:"outcome"`
}

// Ingest handles POST /jobs, accepting one canonical record
func (h *JobsHandler) Ingest(c echo.Context) error {
	ctx := c.Request().Context()

	var record models.UnifiedJob
	if err := c.Bind(&record); err != nil {
		return BadRequest("invalid request body")
	}

	outcome, err := h.pipeline.Ingest(ctx, record)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidRecord) {
			return BadRequest(err.Error())
		}
		return DatabaseError("failed to ingest job")
	}

	if outcome == ingest.OutcomeInserted {
		return CreatedResponse(c, IngestResponse{Outcome: outcome})
	}
	return SuccessResponse(c, IngestResponse{Outcome: outcome})
}
