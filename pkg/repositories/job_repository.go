package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	jobsTable             = "jobs"
	jobSkillsTable        = "job_skills"
	jobContractTypesTable = "job_contract_types"
)

var jobStruct = database.NewStruct(new(models.Job))

// JobRepository handles persistence of job rows and their junction edges.
type JobRepository struct {
	*Repository
}

// NewJobRepository creates a new job repository
func NewJobRepository(db database.DB, logger ectologger.Logger) *JobRepository {
	return &JobRepository{
		Repository: NewRepository(db, logger),
	}
}

// GetByExternalID returns the job with the given external id, or nil when none
// exists.
func (r *JobRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Job, error) {
	ctx, span := tracing.StartSpan(ctx, "JobRepository.GetByExternalID")
	defer span.End()

	sb := jobStruct.SelectFrom(jobsTable)
	sb.Where(sb.Equal("external_id", externalID))

	query, args := sb.Build()
	var job models.Job
	err := r.DB().GetContext(ctx, &job, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"external_id": externalID,
		}).Error("failed to get job by external id")
		return nil, fmt.Errorf("get job by external id: %w", err)
	}

	return &job, nil
}

// Insert persists a new job row inside the given transaction and fills in the
// generated id and created_at.
func (r *JobRepository) Insert(ctx context.Context, tx database.Tx, job *models.Job) error {
	ctx, span := tracing.StartSpan(ctx, "JobRepository.Insert")
	defer span.End()

	ib := database.NewInsertBuilder()
	ib = ib.InsertInto(jobsTable).
		Cols("external_id", "title", "remote", "experience", "city_id", "full_address",
			"compensation_min", "compensation_max", "compensation_currency", "compensation_salary_range",
			"company_id", "industry_id", "posted_date").
		Values(job.ExternalID, job.Title, job.Remote, job.Experience, job.CityID, job.FullAddress,
			job.CompensationMin, job.CompensationMax, job.CompensationCurrency, job.CompensationSalaryRange,
			job.CompanyID, job.IndustryID, job.PostedDate).
		Returning("id", "created_at")

	query, args := ib.Build()
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&job.ID, &job.CreatedAt); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"external_id": job.ExternalID,
		}).Error("failed to insert job")
		return fmt.Errorf("insert job: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"external_id": job.ExternalID,
		"job_id":      job.ID,
	}).Debugf("Created %s", jobsTable)
	return nil
}

// AttachSkill links a job to a skill. Duplicate edges are ignored via the
// junction's unique key.
func (r *JobRepository) AttachSkill(ctx context.Context, tx database.Tx, jobID, skillID int64) error {
	ctx, span := tracing.StartSpan(ctx, "JobRepository.AttachSkill")
	defer span.End()

	return r.attach(ctx, tx, jobSkillsTable, "skill_id", jobID, skillID)
}

// AttachContractType links a job to a contract type. Duplicate edges are
// ignored via the junction's unique key.
func (r *JobRepository) AttachContractType(ctx context.Context, tx database.Tx, jobID, contractTypeID int64) error {
	ctx, span := tracing.StartSpan(ctx, "JobRepository.AttachContractType")
	defer span.End()

	return r.attach(ctx, tx, jobContractTypesTable, "contract_type_id", jobID, contractTypeID)
}

func (r *JobRepository) attach(ctx context.Context, tx database.Tx, table, dimCol string, jobID, dimID int64) error {
	ib := database.NewInsertBuilder()
	ib = ib.InsertInto(table).Cols("job_id", dimCol).Values(jobID, dimID)
	ib.OnConflictDoNothing()

	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"job_id": jobID,
			"table":  table,
		}).Error("failed to attach dimension to job")
		return fmt.Errorf("attach %s: %w", table, err)
	}
	return nil
}
