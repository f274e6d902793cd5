// Package scheduler drives the periodic provider fetch cycle.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectologger"

	appctx "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/ingest"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/providers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var (
	// ErrSchedulerAlreadyRunning is returned when trying to start an already running scheduler
	ErrSchedulerAlreadyRunning = errors.New("scheduler already running")
)

const (
	// DefaultPollInterval is the default interval between fetch cycles
	DefaultPollInterval = 10 * time.Minute

	// DefaultFetchTimeout bounds a single provider fetch
	DefaultFetchTimeout = 30 * time.Second
)

// Fetcher retrieves the raw payload for one provider endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint providers.Endpoint) ([]byte, error)
}

// Normalizer converts a raw payload into canonical records for a provider
// identity.
type Normalizer interface {
	Convert(provider string, payload []byte) ([]models.UnifiedJob, error)
}

// Ingestor persists a batch of canonical records.
type Ingestor interface {
	IngestBatch(ctx context.Context, records []models.UnifiedJob) ingest.BatchResult
}

// Config holds configuration for the scheduler
type Config struct {
	// PollInterval is how often to run a fetch cycle
	PollInterval time.Duration

	// FetchTimeout bounds each provider request
	FetchTimeout time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		FetchTimeout: DefaultFetchTimeout,
	}
}

// Scheduler runs the fetch-normalize-ingest cycle on a fixed interval. At
// most one cycle is in flight at a time; a tick that fires while a cycle is
// still running is skipped, never queued.
type Scheduler struct {
	endpoints  []providers.Endpoint
	fetcher    Fetcher
	normalizer Normalizer
	ingestor   Ingestor
	config     Config
	logger     ectologger.Logger

	// Coordination
	stopCh   chan struct{}
	stoppedC chan struct{}
	running  bool
	inFlight atomic.Bool
	mu       sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(
	endpoints []providers.Endpoint,
	fetcher Fetcher,
	normalizer Normalizer,
	ingestor Ingestor,
	config Config,
	logger ectologger.Logger,
) *Scheduler {
	// Apply defaults
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}

	return &Scheduler{
		endpoints:  endpoints,
		fetcher:    fetcher,
		normalizer: normalizer,
		ingestor:   ingestor,
		config:     config,
		logger:     logger,
		stopCh:     make(chan struct{}),
		stoppedC:   make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSchedulerAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	s.logger.WithContext(ctx).Infof("Starting scheduler: poll_interval=%s providers=%d",
		s.config.PollInterval, len(s.endpoints))

	go s.pollLoop(ctx)

	return nil
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.WithContext(ctx).Info("Stopping scheduler...")

	close(s.stopCh)

	select {
	case <-s.stoppedC:
		s.logger.WithContext(ctx).Info("Scheduler stopped gracefully")
	case <-ctx.Done():
		s.logger.WithContext(ctx).Warn("Scheduler shutdown timed out")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// pollLoop runs fetch cycles until stopped
func (s *Scheduler) pollLoop(ctx context.Context) {
	defer close(s.stoppedC)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	// Run immediately on start
	s.RunCycle(ctx)

	for {
		select {
		case <-s.stopCh:
			s.logger.WithContext(ctx).Debug("Scheduler poll loop stopping")
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle runs a single fetch cycle. If a cycle is already in flight the
// call is a no-op.
func (s *Scheduler) RunCycle(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.WithContext(ctx).Warn("Fetch cycle still in flight, skipping tick")
		metrics.FetchCyclesSkipped.Inc()
		return
	}
	defer s.inFlight.Store(false)

	ctx, span := tracing.StartSpan(ctx, "Scheduler.RunCycle")
	defer span.End()

	start := time.Now()
	s.logger.WithContext(ctx).Debug("Running fetch cycle")

	var records []models.UnifiedJob
	for _, endpoint := range s.endpoints {
		batch, err := s.collect(ctx, endpoint)
		if err != nil {
			// One broken provider never blocks the others
			s.logger.WithContext(ctx).WithError(err).WithField("provider", endpoint.Name).
				Error("provider cycle failed")
			continue
		}
		records = append(records, batch...)
	}

	if len(records) > 0 {
		result := s.ingestor.IngestBatch(ctx, records)
		s.logger.WithContext(ctx).Infof("Fetch cycle completed: inserted=%d skipped=%d failed=%d duration=%s",
			result.Inserted, result.Skipped, result.Failed, time.Since(start))
	} else {
		s.logger.WithContext(ctx).Info("Fetch cycle completed: no records")
	}

	metrics.FetchCyclesTotal.Inc()
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
}

// collect fetches and normalizes one provider's payload
func (s *Scheduler) collect(ctx context.Context, endpoint providers.Endpoint) ([]models.UnifiedJob, error) {
	ctx = appctx.SetProvider(ctx, endpoint.Name)

	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	payload, err := s.fetcher.Fetch(fetchCtx, endpoint)
	if err != nil {
		return nil, err
	}

	records, err := s.normalizer.Convert(endpoint.Name, payload)
	if err != nil {
		metrics.ProviderFetchFailures.WithLabelValues(endpoint.Name).Inc()
		return nil, err
	}
	return records, nil
}
