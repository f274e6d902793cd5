package repositories

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	statesTable        = "states"
	citiesTable        = "cities"
	companiesTable     = "companies"
	industriesTable    = "industries"
	skillsTable        = "skills"
	contractTypesTable = "contract_types"
)

// DefaultIndustry is stored when a provider record carries no industry.
const DefaultIndustry = "Not-Defined"

// DefaultContractType mirrors the contract_types label column default.
const DefaultContractType = "Full-Time"

// ReferenceResolver is the find-or-create contract for the dimension tables.
type ReferenceResolver interface {
	ResolveState(ctx context.Context, name string) (int64, error)
	ResolveCity(ctx context.Context, name string, stateID int64) (int64, error)
	ResolveCompany(ctx context.Context, company models.CompanyRef) (int64, error)
	ResolveIndustry(ctx context.Context, name string) (int64, error)
	ResolveSkill(ctx context.Context, name string) (int64, error)
	ResolveContractType(ctx context.Context, label string) (int64, error)
}

// ReferenceRepository resolves dimension rows by natural key, creating them on
// first use. Every resolve is a single value-returning upsert, so concurrent
// callers with the same key converge on one row instead of racing a
// lookup-then-insert sequence.
type ReferenceRepository struct {
	*Repository
}

// NewReferenceRepository creates a new reference repository
func NewReferenceRepository(db database.DB, logger ectologger.Logger) *ReferenceRepository {
	return &ReferenceRepository{
		Repository: NewRepository(db, logger),
	}
}

// upsertReturningID runs INSERT ... ON CONFLICT (conflictTarget) DO UPDATE SET
// <keyCol>=EXCLUDED.<keyCol> RETURNING id. The no-op assignment makes the
// insert return the existing row's id on conflict.
func (r *ReferenceRepository) upsertReturningID(ctx context.Context, table, conflictTarget, keyCol string, cols []string, values []any) (int64, error) {
	ib := database.NewInsertBuilder()
	ib = ib.InsertInto(table).Cols(cols...).Values(values...)
	ub := ib.OnConflict(conflictTarget)
	ub.Set(ub.Assign(keyCol, database.Excluded(keyCol)))
	ib = ib.Returning("id")

	query, args := ib.Build()

	var id int64
	if err := r.DB().QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table": table,
		}).Error("failed to resolve dimension row")
		return 0, fmt.Errorf("resolve %s: %w", table, err)
	}

	return id, nil
}

// ResolveState finds or creates a state by name.
func (r *ReferenceRepository) ResolveState(ctx context.Context, name string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ResolveState")
	defer span.End()

	return r.upsertReturningID(ctx, statesTable, "name", "name", []string{"name"}, []any{name})
}

// ResolveCity finds or creates a city by name. The state id is only used when
// the city is first created; city uniqueness is by name alone.
func (r *ReferenceRepository) ResolveCity(ctx context.Context, name string, stateID int64) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ResolveCity")
	defer span.End()

	return r.upsertReturningID(ctx, citiesTable, "name", "name", []string{"name", "state_id"}, []any{name, stateID})
}

// ResolveCompany finds or creates a company by name. The website is recorded
// on first creation and never updated afterwards.
func (r *ReferenceRepository) ResolveCompany(ctx context.Context, company models.CompanyRef) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ResolveCompany")
	defer span.End()

	return r.upsertReturningID(ctx, companiesTable, "name", "name", []string{"name", "website"}, []any{company.Name, company.Website})
}

// ResolveIndustry finds or creates an industry by name, substituting the
// placeholder when the record carries none.
func (r *ReferenceRepository) ResolveIndustry(ctx context.Context, name string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ResolveIndustry")
	defer span.End()

	if name == "" {
		name = DefaultIndustry
	}
	return r.upsertReturningID(ctx, industriesTable, "name", "name", []string{"name"}, []any{name})
}

// ResolveSkill finds or creates a skill. Skills keep the casing they were
// first seen with, but uniqueness and lookup are case-insensitive, so "SQL"
// and "sql" resolve to the same row.
func (r *ReferenceRepository) ResolveSkill(ctx context.Context, name string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ResolveSkill")
	defer span.End()

	ib := database.NewInsertBuilder()
	ib = ib.InsertInto(skillsTable).Cols("name").Values(name)
	ub := ib.OnConflict("(lower(name))")
	ub.Set(ub.Assign("name", sqlbuilder.Raw("skills.name")))
	ib = ib.Returning("id")

	query, args := ib.Build()

	var id int64
	if err := r.DB().QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"skill": name,
		}).Error("failed to resolve skill")
		return 0, fmt.Errorf("resolve %s: %w", skillsTable, err)
	}

	return id, nil
}

// ResolveContractType finds or creates a contract type by label.
func (r *ReferenceRepository) ResolveContractType(ctx context.Context, label string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ResolveContractType")
	defer span.End()

	return r.upsertReturningID(ctx, contractTypesTable, "label", "label", []string{"label"}, []any{label})
}
