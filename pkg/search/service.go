// Package search answers filtered, paginated job queries over the store.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ErrInvalidFilter marks a filter rejected before any query ran. Invalid
// filters are never retried.
var ErrInvalidFilter = errors.New("invalid job filter")

const (
	maxAttempts = 3
	retryDelay  = time.Second
)

// Searcher is the query surface of the job repository.
type Searcher interface {
	Search(ctx context.Context, filter models.JobFilter) ([]models.JobView, int, error)
}

// Service validates filters, runs the search with a bounded retry, and
// assembles the pagination envelope.
type Service struct {
	repo     Searcher
	logger   ectologger.Logger
	validate *validator.Validate
	delay    time.Duration
}

// NewService creates a new search service
func NewService(repo Searcher, logger ectologger.Logger) *Service {
	return &Service{
		repo:     repo,
		logger:   logger,
		validate: validator.New(),
		delay:    retryDelay,
	}
}

// Query runs the filtered search. Transient query failures are retried up to
// three times with a fixed delay; a filter that fails validation fails fast.
func (s *Service) Query(ctx context.Context, filter models.JobFilter) (*models.PaginatedJobs, error) {
	ctx, span := tracing.StartSpan(ctx, "SearchService.Query")
	defer span.End()

	if err := s.validate.Struct(&filter); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if filter.SalaryMin != nil && filter.SalaryMax != nil && *filter.SalaryMin > *filter.SalaryMax {
		return nil, fmt.Errorf("%w: salaryMin exceeds salaryMax", ErrInvalidFilter)
	}
	filter.ApplyDefaults()

	jobs, total, err := s.searchWithRetry(ctx, filter)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.JobView{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}

	return &models.PaginatedJobs{
		Data:        jobs,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: filter.Page,
	}, nil
}

func (s *Service) searchWithRetry(ctx context.Context, filter models.JobFilter) ([]models.JobView, int, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		jobs, total, err := s.repo.Search(ctx, filter)
		if err == nil {
			return jobs, total, nil
		}

		lastErr = err
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
		}).Warn("search attempt failed")

		if attempt == maxAttempts {
			break
		}
		metrics.SearchRetries.Inc()

		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	return nil, 0, fmt.Errorf("search failed after %d attempts: %w", maxAttempts, lastErr)
}
