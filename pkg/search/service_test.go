package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeSearcher struct {
	calls    int
	failures int
	jobs     []models.JobView
	total    int
}

func (f *fakeSearcher) Search(ctx context.Context, filter models.JobFilter) ([]models.JobView, int, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, 0, errors.New("connection reset")
	}
	return f.jobs, f.total, nil
}

func newTestService(repo Searcher) *Service {
	svc := NewService(repo, testLogger())
	svc.delay = time.Millisecond
	return svc
}

func int64Ptr(v int64) *int64 { return &v }

func TestQuery_AppliesDefaultsAndEnvelope(t *testing.T) {
	repo := &fakeSearcher{
		jobs:  make([]models.JobView, 5),
		total: 25,
	}
	svc := newTestService(repo)

	result, err := svc.Query(context.Background(), models.JobFilter{Page: 3, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, result.Data, 5)
	assert.Equal(t, 25, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 3, result.CurrentPage)
}

func TestQuery_DefaultsWhenUnset(t *testing.T) {
	repo := &fakeSearcher{total: 0}
	svc := newTestService(repo)

	result, err := svc.Query(context.Background(), models.JobFilter{})
	require.NoError(t, err)

	assert.Equal(t, models.DefaultPage, result.CurrentPage)
	assert.Equal(t, 0, result.TotalPages)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
}

func TestQuery_RetriesTransientFailure(t *testing.T) {
	repo := &fakeSearcher{failures: 1, total: 1, jobs: make([]models.JobView, 1)}
	svc := newTestService(repo)

	result, err := svc.Query(context.Background(), models.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
	assert.Equal(t, 1, result.Total)
}

func TestQuery_ExhaustsRetries(t *testing.T) {
	repo := &fakeSearcher{failures: 10}
	svc := newTestService(repo)

	_, err := svc.Query(context.Background(), models.JobFilter{})
	require.Error(t, err)
	assert.Equal(t, maxAttempts, repo.calls)
}

func TestQuery_InvalidFilterFailsFast(t *testing.T) {
	repo := &fakeSearcher{}
	svc := newTestService(repo)

	_, err := svc.Query(context.Background(), models.JobFilter{SalaryMin: int64Ptr(-1)})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Zero(t, repo.calls)
}

func TestQuery_SalaryMinAboveMaxRejected(t *testing.T) {
	repo := &fakeSearcher{}
	svc := newTestService(repo)

	_, err := svc.Query(context.Background(), models.JobFilter{
		SalaryMin: int64Ptr(150000),
		SalaryMax: int64Ptr(50000),
	})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Zero(t, repo.calls)
}

func TestQuery_ContextCancelledDuringRetry(t *testing.T) {
	repo := &fakeSearcher{failures: 10}
	svc := NewService(repo, testLogger())
	svc.delay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Query(ctx, models.JobFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, repo.calls)
}
