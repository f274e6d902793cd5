package normalize

import (
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestConvertFlatList(t *testing.T) {
	payload := []byte(`{
		"jobs": [
			{
				"jobId": "job-101",
				"title": "Backend Engineer",
				"details": {
					"location": "San Francisco, CA",
					"type": "Contract",
					"salaryRange": "$75k - $134k"
				},
				"company": {
					"name": "Acme",
					"website": "https://acme.example",
					"industry": "Fintech"
				},
				"skills": ["Go", "SQL"],
				"postedDate": "2024-11-02T00:00:00Z"
			}
		]
	}`)

	jobs, err := ConvertFlatList(payload)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "job-101", job.JobID)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "San Francisco", job.City)
	assert.Equal(t, "CA", job.State)
	assert.Equal(t, "San Francisco, CA", job.FullAddress)
	assert.False(t, job.Remote)
	assert.Equal(t, int64(75000), job.Compensation.Min)
	assert.Equal(t, int64(134000), job.Compensation.Max)
	assert.Equal(t, "USD", job.Compensation.Currency)
	assert.Equal(t, "$75k - $134k", job.Compensation.SalaryRange)
	assert.Equal(t, []string{"Contract"}, job.ContractType)
	assert.Equal(t, "Acme", job.Company.Name)
	assert.Equal(t, "Fintech", job.Industry)
	assert.Equal(t, []string{"Go", "SQL"}, job.Skills)
}

func TestConvertFlatList_RemoteLocation(t *testing.T) {
	payload := []byte(`{"jobs": [{"jobId": "job-1", "title": "Dev", "details": {"location": "Remote"}}]}`)

	jobs, err := ConvertFlatList(payload)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.True(t, jobs[0].Remote)
	assert.Equal(t, "Remote", jobs[0].City)
	assert.Equal(t, "", jobs[0].State)
}

func TestConvertFlatList_MissingOptionalFields(t *testing.T) {
	payload := []byte(`{"jobs": [{"jobId": "job-2", "title": "Dev"}]}`)

	jobs, err := ConvertFlatList(payload)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "", job.City)
	assert.Equal(t, int64(0), job.Compensation.Min)
	assert.Equal(t, int64(0), job.Compensation.Max)
	assert.Empty(t, job.ContractType)
	assert.NotNil(t, job.Skills)
	assert.Empty(t, job.Skills)
}

func TestConvertFlatList_UnparseableSalaryRange(t *testing.T) {
	payload := []byte(`{"jobs": [{"jobId": "job-3", "title": "Dev", "details": {"salaryRange": "competitive"}}]}`)

	jobs, err := ConvertFlatList(payload)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Equal(t, int64(0), jobs[0].Compensation.Min)
	assert.Equal(t, int64(0), jobs[0].Compensation.Max)
	assert.Equal(t, "competitive", jobs[0].Compensation.SalaryRange)
}

func TestConvertFlatList_InvalidPayload(t *testing.T) {
	_, err := ConvertFlatList([]byte(`not json`))
	assert.Error(t, err)
}

func TestConvertKeyedMap(t *testing.T) {
	payload := []byte(`{
		"data": {
			"jobsList": {
				"job-480": {
					"position": "Platform Engineer",
					"location": {"city": "Austin", "state": "CA", "remote": false},
					"compensation": {"min": 74000, "max": 121000, "currency": "USD"},
					"employer": {"companyName": "Globex", "website": "https://globex.example"},
					"requirements": {"experience": 4, "technologies": ["Kubernetes", "Go"]},
					"datePosted": "2024-10-28"
				}
			}
		}
	}`)

	jobs, err := ConvertKeyedMap(payload)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "job-480", job.JobID)
	assert.Equal(t, "Platform Engineer", job.Title)
	assert.Equal(t, "Austin", job.City)
	assert.Equal(t, "CA", job.State)
	assert.Equal(t, "Austin, CA", job.FullAddress)
	assert.False(t, job.Remote)
	assert.Equal(t, int64(74000), job.Compensation.Min)
	assert.Equal(t, int64(121000), job.Compensation.Max)
	assert.Equal(t, "$74k - $121k", job.Compensation.SalaryRange)
	assert.Equal(t, 4, job.Experience)
	assert.Equal(t, []string{"Kubernetes", "Go"}, job.Skills)
	assert.Equal(t, "Globex", job.Company.Name)
}

func TestConvertKeyedMap_DeterministicOrder(t *testing.T) {
	payload := []byte(`{
		"data": {
			"jobsList": {
				"job-9": {"position": "C"},
				"job-1": {"position": "A"},
				"job-5": {"position": "B"}
			}
		}
	}`)

	jobs, err := ConvertKeyedMap(payload)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, "job-1", jobs[0].JobID)
	assert.Equal(t, "job-5", jobs[1].JobID)
	assert.Equal(t, "job-9", jobs[2].JobID)
}

func TestConvertKeyedMap_FullAddressVariants(t *testing.T) {
	tests := []struct {
		name     string
		city     string
		state    string
		expected string
	}{
		{"both", "Austin", "TX", "Austin, TX"},
		{"city only", "Austin", "", "Austin"},
		{"state only", "", "TX", "TX"},
		{"neither", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildFullAddress(tt.city, tt.state))
		})
	}
}

func TestFormatSalaryRange(t *testing.T) {
	assert.Equal(t, "$74k - $121k", formatSalaryRange(74000, 121000))
	assert.Equal(t, "$50k", formatSalaryRange(50000, 0))
	assert.Equal(t, "$90k", formatSalaryRange(0, 90000))
	assert.Equal(t, "", formatSalaryRange(0, 0))
}

func TestRegistry_Convert(t *testing.T) {
	registry := NewRegistry(testLogger())

	payload := []byte(`{"jobs": []}`)
	jobs, err := registry.Convert(ProviderFlatList, payload)
	assert.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestRegistry_UnsupportedProvider(t *testing.T) {
	registry := NewRegistry(testLogger())

	jobs, err := registry.Convert("provider99", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
	assert.Nil(t, jobs)
}

func TestRegistry_RegisterOverrides(t *testing.T) {
	registry := NewRegistry(testLogger())
	registry.Register(ProviderFlatList, ConvertKeyedMap)

	jobs, err := registry.Convert(ProviderFlatList, []byte(`{"data": {"jobsList": {}}}`))
	assert.NoError(t, err)
	assert.Empty(t, jobs)
}
