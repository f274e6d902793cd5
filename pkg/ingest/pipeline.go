// Package ingest persists canonical job records. Ingestion is idempotent on
// the external job id: the first write wins and replays are skipped.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/repositories"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ErrPersistence marks failures from the storage layer, as opposed to a record
// that was rejected on its own merits.
var ErrPersistence = errors.New("persistence failure")

// ErrInvalidRecord marks a record that failed validation before any write.
var ErrInvalidRecord = errors.New("invalid job record")

// Outcome is the per-record result of an ingestion attempt.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeSkipped  Outcome = "skipped"
)

// BatchResult summarizes one batch of ingestion attempts.
type BatchResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// TxBeginner opens the transaction the job row and its junction edges commit
// in. Satisfied by database.DatabaseInstance.
type TxBeginner interface {
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error)
}

// JobStore is the slice of the job repository the pipeline writes through.
type JobStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.Job, error)
	Insert(ctx context.Context, tx database.Tx, job *models.Job) error
	AttachSkill(ctx context.Context, tx database.Tx, jobID, skillID int64) error
	AttachContractType(ctx context.Context, tx database.Tx, jobID, contractTypeID int64) error
}

// Emitter publishes a notification after a job row is committed. Emission
// failures are logged and never fail the ingestion.
type Emitter interface {
	JobIngested(ctx context.Context, job models.Job) error
}

// Pipeline turns UnifiedJob records into rows. Dimension rows are resolved
// with atomic upserts outside the job transaction; the job row and its
// junction edges commit together.
type Pipeline struct {
	db       TxBeginner
	jobs     JobStore
	refs     repositories.ReferenceResolver
	emitter  Emitter
	logger   ectologger.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewPipeline creates a new ingestion pipeline. The emitter may be nil.
func NewPipeline(db TxBeginner, jobs JobStore, refs repositories.ReferenceResolver, emitter Emitter, logger ectologger.Logger) *Pipeline {
	return &Pipeline{
		db:       db,
		jobs:     jobs,
		refs:     refs,
		emitter:  emitter,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Ingest persists one canonical record. A record whose external id already
// exists is skipped without touching any row.
func (p *Pipeline) Ingest(ctx context.Context, record models.UnifiedJob) (Outcome, error) {
	ctx, span := tracing.StartSpan(ctx, "Pipeline.Ingest")
	defer span.End()

	if err := p.validate.Struct(record); err != nil {
		metrics.JobsFailed.Inc()
		return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	existing, err := p.jobs.GetByExternalID(ctx, record.JobID)
	if err != nil {
		metrics.JobsFailed.Inc()
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		p.logger.WithContext(ctx).WithField("external_id", record.JobID).Debug("job already ingested, skipping")
		metrics.JobsSkipped.Inc()
		return OutcomeSkipped, nil
	}

	job, skillIDs, contractTypeIDs, err := p.resolve(ctx, record)
	if err != nil {
		metrics.JobsFailed.Inc()
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := p.persist(ctx, job, skillIDs, contractTypeIDs); err != nil {
		// A concurrent writer can slip past the duplicate check; the unique
		// constraint settles the race and the loser is an ordinary skip.
		if isDuplicateExternalID(err) {
			p.logger.WithContext(ctx).WithField("external_id", record.JobID).Debug("job inserted concurrently, skipping")
			metrics.JobsSkipped.Inc()
			return OutcomeSkipped, nil
		}
		metrics.JobsFailed.Inc()
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.JobsIngested.Inc()
	p.logger.WithContext(ctx).WithFields(map[string]any{
		"external_id": job.ExternalID,
		"job_id":      job.ID,
	}).Info("ingested job")

	if p.emitter != nil {
		if err := p.emitter.JobIngested(ctx, *job); err != nil {
			p.logger.WithContext(ctx).WithError(err).Warn("failed to emit job ingested event")
		}
	}

	return OutcomeInserted, nil
}

// IngestBatch ingests each record independently. One bad record never blocks
// the rest of the batch.
func (p *Pipeline) IngestBatch(ctx context.Context, records []models.UnifiedJob) BatchResult {
	ctx, span := tracing.StartSpan(ctx, "Pipeline.IngestBatch")
	defer span.End()

	var result BatchResult
	for _, record := range records {
		outcome, err := p.Ingest(ctx, record)
		if err != nil {
			result.Failed++
			p.logger.WithContext(ctx).WithError(err).WithField("external_id", record.JobID).Error("failed to ingest job")
			continue
		}
		if outcome == OutcomeSkipped {
			result.Skipped++
			continue
		}
		result.Inserted++
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	}).Info("ingested batch")
	return result
}

// resolve upserts the record's dimension rows and assembles the job row.
// Dimension writes run outside the job transaction so a later job failure
// leaves reusable dimension rows behind, which is harmless.
func (p *Pipeline) resolve(ctx context.Context, record models.UnifiedJob) (*models.Job, []int64, []int64, error) {
	stateID, err := p.refs.ResolveState(ctx, record.State)
	if err != nil {
		return nil, nil, nil, err
	}
	cityID, err := p.refs.ResolveCity(ctx, record.City, stateID)
	if err != nil {
		return nil, nil, nil, err
	}
	companyID, err := p.refs.ResolveCompany(ctx, record.Company)
	if err != nil {
		return nil, nil, nil, err
	}
	industryID, err := p.refs.ResolveIndustry(ctx, record.Industry)
	if err != nil {
		return nil, nil, nil, err
	}

	skillIDs := make([]int64, 0, len(record.Skills))
	for _, skill := range record.Skills {
		if skill == "" {
			continue
		}
		id, err := p.refs.ResolveSkill(ctx, skill)
		if err != nil {
			return nil, nil, nil, err
		}
		skillIDs = append(skillIDs, id)
	}

	contractTypeIDs := make([]int64, 0, len(record.ContractType))
	for _, label := range record.ContractType {
		if label == "" {
			continue
		}
		id, err := p.refs.ResolveContractType(ctx, label)
		if err != nil {
			return nil, nil, nil, err
		}
		contractTypeIDs = append(contractTypeIDs, id)
	}

	job := &models.Job{
		ExternalID:              record.JobID,
		Title:                   record.Title,
		Remote:                  record.Remote,
		Experience:              record.Experience,
		CityID:                  cityID,
		FullAddress:             record.City,
		CompensationMin:         record.Compensation.Min,
		CompensationMax:         record.Compensation.Max,
		CompensationCurrency:    record.Compensation.Currency,
		CompensationSalaryRange: record.Compensation.SalaryRange,
		CompanyID:               companyID,
		IndustryID:              industryID,
		PostedDate:              p.parsePostedDate(ctx, record.PostedDate),
	}
	return job, skillIDs, contractTypeIDs, nil
}

// persist writes the job row and its junction edges in one transaction.
func (p *Pipeline) persist(ctx context.Context, job *models.Job, skillIDs, contractTypeIDs []int64) error {
	ctx, tx, err := p.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := p.jobs.Insert(ctx, tx, job); err != nil {
		return err
	}
	for _, skillID := range skillIDs {
		if err := p.jobs.AttachSkill(ctx, tx, job.ID, skillID); err != nil {
			return err
		}
	}
	for _, contractTypeID := range contractTypeIDs {
		if err := p.jobs.AttachContractType(ctx, tx, job.ID, contractTypeID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// isDuplicateExternalID reports whether err is a unique violation on the jobs
// external id constraint.
func isDuplicateExternalID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code.Name() == "unique_violation" &&
		pqErr.Constraint == "jobs_external_id_key"
}

func (p *Pipeline) parsePostedDate(ctx context.Context, raw string) time.Time {
	if raw == "" {
		return p.now().UTC()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	p.logger.WithContext(ctx).WithField("posted_date", raw).Warn("unparseable posted date, defaulting to now")
	return p.now().UTC()
}
