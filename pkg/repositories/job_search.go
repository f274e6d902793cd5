package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Search returns one page of jobs matching the filter together with the total
// match count. Both queries share the same predicate set so the count always
// agrees with the page.
func (r *JobRepository) Search(ctx context.Context, filter models.JobFilter) ([]models.JobView, int, error) {
	ctx, span := tracing.StartSpan(ctx, "JobRepository.Search")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"j.id", "j.external_id", "j.title", "j.remote", "j.experience",
		"c.name AS city", "s.name AS state", "j.full_address",
		"j.compensation_min", "j.compensation_max", "j.compensation_currency", "j.compensation_salary_range",
		"co.name AS company", "co.website AS company_website", "i.name AS industry",
		"j.posted_date",
	)
	r.joinDimensions(sb)
	r.applyFilter(sb, filter)
	sb.OrderBy("j.posted_date DESC", "j.id")
	sb.Limit(filter.Limit).Offset(filter.Offset())

	query, args := sb.Build()
	var jobs []models.JobView
	if err := r.DB().SelectContext(ctx, &jobs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to search jobs")
		return nil, 0, fmt.Errorf("search jobs: %w", err)
	}

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	r.joinDimensions(countSb)
	r.applyFilter(countSb, filter)

	countQuery, countArgs := countSb.Build()
	var total int
	if err := r.DB().GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count jobs")
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	if err := r.hydrateDimensions(ctx, jobs); err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (r *JobRepository) joinDimensions(sb *database.SelectBuilder) {
	sb.From(fmt.Sprintf("%s j", jobsTable))
	sb.Join(fmt.Sprintf("%s c", citiesTable), "c.id = j.city_id")
	sb.Join(fmt.Sprintf("%s s", statesTable), "s.id = c.state_id")
	sb.Join(fmt.Sprintf("%s co", companiesTable), "co.id = j.company_id")
	sb.Join(fmt.Sprintf("%s i", industriesTable), "i.id = j.industry_id")
}

func (r *JobRepository) applyFilter(sb *database.SelectBuilder, filter models.JobFilter) {
	if filter.Title != "" {
		sb.Where(sb.ILike("j.title", contains(filter.Title)))
	}
	if filter.Location != "" {
		sb.Where(sb.ILike("c.name", contains(filter.Location)))
	}
	if filter.Company != "" {
		sb.Where(sb.ILike("co.name", contains(filter.Company)))
	}

	switch {
	case filter.SalaryMin != nil && filter.SalaryMax != nil:
		sb.Where(sb.Between("j.compensation_min", *filter.SalaryMin, *filter.SalaryMax))
	case filter.SalaryMin != nil:
		sb.Where(sb.GreaterEqualThan("j.compensation_min", *filter.SalaryMin))
	case filter.SalaryMax != nil:
		sb.Where(sb.LessEqualThan("j.compensation_max", *filter.SalaryMax))
	}

	if len(filter.Skills) > 0 {
		sub := database.NewSelectBuilder()
		sub.Select("1").
			From(fmt.Sprintf("%s js", jobSkillsTable)).
			Join(fmt.Sprintf("%s sk", skillsTable), "sk.id = js.skill_id")
		sub.Where(
			"js.job_id = j.id",
			sub.In("lower(sk.name)", toAnySlice(lowered(filter.Skills))...),
		)
		sb.Where(sb.Exists(sub))
	}
	if len(filter.ContractTypes) > 0 {
		sub := database.NewSelectBuilder()
		sub.Select("1").
			From(fmt.Sprintf("%s jct", jobContractTypesTable)).
			Join(fmt.Sprintf("%s ct", contractTypesTable), "ct.id = jct.contract_type_id")
		sub.Where(
			"jct.job_id = j.id",
			sub.In("ct.label", toAnySlice(filter.ContractTypes)...),
		)
		sb.Where(sb.Exists(sub))
	}
}

// hydrateDimensions fills in Skills and ContractTypes for the page's jobs with
// one query per junction, keyed by job id.
func (r *JobRepository) hydrateDimensions(ctx context.Context, jobs []models.JobView) error {
	if len(jobs) == 0 {
		return nil
	}

	ids := make([]any, len(jobs))
	index := make(map[int64]*models.JobView, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
		index[jobs[i].ID] = &jobs[i]
		jobs[i].Skills = []string{}
		jobs[i].ContractTypes = []string{}
	}

	skillRows, err := r.selectJunction(ctx, jobSkillsTable, "js", skillsTable, "sk", "skill_id", "name", ids)
	if err != nil {
		return err
	}
	for _, row := range skillRows {
		if view, ok := index[row.JobID]; ok {
			view.Skills = append(view.Skills, row.Value)
		}
	}

	ctRows, err := r.selectJunction(ctx, jobContractTypesTable, "jct", contractTypesTable, "ct", "contract_type_id", "label", ids)
	if err != nil {
		return err
	}
	for _, row := range ctRows {
		if view, ok := index[row.JobID]; ok {
			view.ContractTypes = append(view.ContractTypes, row.Value)
		}
	}

	return nil
}

type junctionRow struct {
	JobID int64  `db:"job_id"`
	Value string `db:"value"`
}

func (r *JobRepository) selectJunction(ctx context.Context, junction, junctionAlias, dim, dimAlias, dimCol, valueCol string, ids []any) ([]junctionRow, error) {
	sb := database.NewSelectBuilder()
	sb.Select(
		fmt.Sprintf("%s.job_id", junctionAlias),
		fmt.Sprintf("%s.%s AS value", dimAlias, valueCol),
	).
		From(fmt.Sprintf("%s %s", junction, junctionAlias)).
		Join(fmt.Sprintf("%s %s", dim, dimAlias), fmt.Sprintf("%s.id = %s.%s", dimAlias, junctionAlias, dimCol))
	sb.Where(sb.In(fmt.Sprintf("%s.job_id", junctionAlias), ids...))
	sb.OrderBy(fmt.Sprintf("%s.job_id", junctionAlias), fmt.Sprintf("%s.%s", dimAlias, valueCol))

	query, args := sb.Build()
	var rows []junctionRow
	if err := r.DB().SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table": junction,
		}).Error("failed to load job dimensions")
		return nil, fmt.Errorf("load %s: %w", junction, err)
	}
	return rows, nil
}

func contains(value string) string {
	return "%" + value + "%"
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
