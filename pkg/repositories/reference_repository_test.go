package repositories_test

import (
	"context"
	"os"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/repositories"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	// Use environment variables or defaults for test DB
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "clover"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

// unique makes natural keys collision-free across test runs.
func unique(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

func TestReferenceRepository_ResolveIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewReferenceRepository(db, getTestLogger())
	ctx := context.Background()

	stateName := unique("state")
	first, err := repo.ResolveState(ctx, stateName)
	require.NoError(t, err)
	assert.NotZero(t, first)

	second, err := repo.ResolveState(ctx, stateName)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cityName := unique("city")
	cityID, err := repo.ResolveCity(ctx, cityName, first)
	require.NoError(t, err)
	cityAgain, err := repo.ResolveCity(ctx, cityName, first)
	require.NoError(t, err)
	assert.Equal(t, cityID, cityAgain)

	company := models.CompanyRef{Name: unique("company"), Website: "https://example.com"}
	companyID, err := repo.ResolveCompany(ctx, company)
	require.NoError(t, err)
	companyAgain, err := repo.ResolveCompany(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, companyID, companyAgain)
}

func TestReferenceRepository_SkillCaseInsensitive(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewReferenceRepository(db, getTestLogger())
	ctx := context.Background()

	name := unique("Skill")
	lower, err := repo.ResolveSkill(ctx, name)
	require.NoError(t, err)

	upper, err := repo.ResolveSkill(ctx, "SKILL"+name[5:])
	require.NoError(t, err)
	assert.Equal(t, lower, upper, "differently cased skills must resolve to one row")
}

func TestReferenceRepository_DefaultIndustry(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewReferenceRepository(db, getTestLogger())
	ctx := context.Background()

	fromEmpty, err := repo.ResolveIndustry(ctx, "")
	require.NoError(t, err)

	fromName, err := repo.ResolveIndustry(ctx, repositories.DefaultIndustry)
	require.NoError(t, err)
	assert.Equal(t, fromEmpty, fromName)
}

func TestReferenceRepository_ContractType(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewReferenceRepository(db, getTestLogger())
	ctx := context.Background()

	label := unique("contract")
	first, err := repo.ResolveContractType(ctx, label)
	require.NoError(t, err)
	second, err := repo.ResolveContractType(ctx, label)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
