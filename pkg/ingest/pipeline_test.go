package ingest

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) IsOpen() bool { return !t.committed && !t.rolledBack }
func (t *fakeTx) Commit(ctx context.Context) error {
	if t.IsOpen() {
		t.committed = true
	}
	return nil
}
func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.IsOpen() {
		t.rolledBack = true
	}
	return nil
}
func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, nil
}
func (t *fakeTx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}
func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}
func (t *fakeTx) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

type fakeDB struct {
	tx *fakeTx
}

func (db *fakeDB) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	db.tx = &fakeTx{}
	return ctx, db.tx, nil
}

type fakeStore struct {
	existing      map[string]*models.Job
	inserted      []*models.Job
	skills        map[int64][]int64
	contractTypes map[int64][]int64
	nextID        int64
	insertErr     error
	lookupErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		existing:      map[string]*models.Job{},
		skills:        map[int64][]int64{},
		contractTypes: map[int64][]int64{},
	}
}

func (s *fakeStore) GetByExternalID(ctx context.Context, externalID string) (*models.Job, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.existing[externalID], nil
}

func (s *fakeStore) Insert(ctx context.Context, tx database.Tx, job *models.Job) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.nextID++
	job.ID = s.nextID
	job.CreatedAt = time.Now()
	s.inserted = append(s.inserted, job)
	s.existing[job.ExternalID] = job
	return nil
}

func (s *fakeStore) AttachSkill(ctx context.Context, tx database.Tx, jobID, skillID int64) error {
	s.skills[jobID] = append(s.skills[jobID], skillID)
	return nil
}

func (s *fakeStore) AttachContractType(ctx context.Context, tx database.Tx, jobID, contractTypeID int64) error {
	s.contractTypes[jobID] = append(s.contractTypes[jobID], contractTypeID)
	return nil
}

type fakeResolver struct {
	ids     map[string]int64
	nextID  int64
	failFor string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{ids: map[string]int64{}}
}

func (r *fakeResolver) resolve(kind, key string) (int64, error) {
	if r.failFor == kind {
		return 0, errors.New("resolver unavailable")
	}
	full := kind + ":" + strings.ToLower(key)
	if id, ok := r.ids[full]; ok {
		return id, nil
	}
	r.nextID++
	r.ids[full] = r.nextID
	return r.nextID, nil
}

func (r *fakeResolver) ResolveState(ctx context.Context, name string) (int64, error) {
	return r.resolve("state", name)
}
func (r *fakeResolver) ResolveCity(ctx context.Context, name string, stateID int64) (int64, error) {
	return r.resolve("city", name)
}
func (r *fakeResolver) ResolveCompany(ctx context.Context, company models.CompanyRef) (int64, error) {
	return r.resolve("company", company.Name)
}
func (r *fakeResolver) ResolveIndustry(ctx context.Context, name string) (int64, error) {
	return r.resolve("industry", name)
}
func (r *fakeResolver) ResolveSkill(ctx context.Context, name string) (int64, error) {
	return r.resolve("skill", name)
}
func (r *fakeResolver) ResolveContractType(ctx context.Context, label string) (int64, error) {
	return r.resolve("contract_type", label)
}

type fakeEmitter struct {
	events []models.Job
	err    error
}

func (e *fakeEmitter) JobIngested(ctx context.Context, job models.Job) error {
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, job)
	return nil
}

func testRecord() models.UnifiedJob {
	return models.UnifiedJob{
		JobID:        "job-101",
		Title:        "Backend Engineer",
		Remote:       false,
		City:         "Austin",
		State:        "TX",
		FullAddress:  "Austin, TX",
		ContractType: []string{"Contract"},
		Compensation: models.Compensation{
			Min:         75000,
			Max:         134000,
			Currency:    "USD",
			SalaryRange: "$75k - $134k",
		},
		Company:    models.CompanyRef{Name: "Acme", Website: "https://acme.example"},
		Industry:   "Fintech",
		Skills:     []string{"Go", "SQL"},
		PostedDate: "2024-11-02T00:00:00Z",
	}
}

func newTestPipeline() (*Pipeline, *fakeDB, *fakeStore, *fakeResolver, *fakeEmitter) {
	db := &fakeDB{}
	store := newFakeStore()
	resolver := newFakeResolver()
	emitter := &fakeEmitter{}
	pipeline := NewPipeline(db, store, resolver, emitter, testLogger())
	return pipeline, db, store, resolver, emitter
}

func TestPipeline_IngestNewRecord(t *testing.T) {
	pipeline, db, store, _, emitter := newTestPipeline()

	outcome, err := pipeline.Ingest(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)

	require.Len(t, store.inserted, 1)
	job := store.inserted[0]
	assert.Equal(t, "job-101", job.ExternalID)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Austin", job.FullAddress)
	assert.Equal(t, int64(75000), job.CompensationMin)
	assert.Equal(t, "2024-11-02T00:00:00Z", job.PostedDate.Format(time.RFC3339))

	assert.Len(t, store.skills[job.ID], 2)
	assert.Len(t, store.contractTypes[job.ID], 1)

	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, "job-101", emitter.events[0].ExternalID)
}

func TestPipeline_IngestDuplicateSkipped(t *testing.T) {
	pipeline, _, store, _, emitter := newTestPipeline()

	outcome, err := pipeline.Ingest(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)

	outcome, err = pipeline.Ingest(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	assert.Len(t, store.inserted, 1)
	assert.Len(t, emitter.events, 1)
}

func TestPipeline_IngestInvalidRecord(t *testing.T) {
	pipeline, _, store, _, _ := newTestPipeline()

	record := testRecord()
	record.Title = ""

	_, err := pipeline.Ingest(context.Background(), record)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.NotErrorIs(t, err, ErrPersistence)
	assert.Empty(t, store.inserted)
}

func TestPipeline_ResolverFailure(t *testing.T) {
	pipeline, _, store, resolver, _ := newTestPipeline()
	resolver.failFor = "company"

	_, err := pipeline.Ingest(context.Background(), testRecord())
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, store.inserted)
}

func TestPipeline_InsertFailureRollsBack(t *testing.T) {
	pipeline, db, store, _, emitter := newTestPipeline()
	store.insertErr = errors.New("connection reset")

	_, err := pipeline.Ingest(context.Background(), testRecord())
	assert.ErrorIs(t, err, ErrPersistence)

	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
	assert.Empty(t, emitter.events)
}

func TestPipeline_ConcurrentDuplicateInsertIsSkipped(t *testing.T) {
	pipeline, db, store, _, emitter := newTestPipeline()
	store.insertErr = &pq.Error{Code: "23505", Constraint: "jobs_external_id_key"}

	outcome, err := pipeline.Ingest(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	assert.True(t, db.tx.rolledBack)
	assert.Empty(t, store.inserted)
	assert.Empty(t, emitter.events)
}

func TestPipeline_EmitterFailureDoesNotFailIngest(t *testing.T) {
	pipeline, _, store, _, emitter := newTestPipeline()
	emitter.err = errors.New("broker unavailable")

	outcome, err := pipeline.Ingest(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)
	assert.Len(t, store.inserted, 1)
}

func TestPipeline_NoContractTypesMeansNoJunctions(t *testing.T) {
	pipeline, _, store, _, _ := newTestPipeline()

	record := testRecord()
	record.ContractType = nil

	_, err := pipeline.Ingest(context.Background(), record)
	require.NoError(t, err)

	job := store.inserted[0]
	assert.Empty(t, store.contractTypes[job.ID])
}

func TestPipeline_EmptyPostedDateDefaultsToNow(t *testing.T) {
	pipeline, _, store, _, _ := newTestPipeline()
	fixed := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	pipeline.now = func() time.Time { return fixed }

	record := testRecord()
	record.PostedDate = ""

	_, err := pipeline.Ingest(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, fixed, store.inserted[0].PostedDate)
}

func TestPipeline_IngestBatchIsolation(t *testing.T) {
	pipeline, _, store, _, _ := newTestPipeline()

	bad := testRecord()
	bad.JobID = "job-bad"
	bad.Title = ""

	second := testRecord()
	second.JobID = "job-102"

	duplicate := testRecord()

	result := pipeline.IngestBatch(context.Background(), []models.UnifiedJob{
		testRecord(), bad, second, duplicate,
	})

	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, store.inserted, 2)
}
