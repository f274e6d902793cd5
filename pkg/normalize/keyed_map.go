package normalize

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Ramsey-B/clover/pkg/models"
)

// ProviderKeyedMap is the identity of the keyed-map schema provider:
// {"data": {"jobsList": {"<externalId>": {position, location, compensation, employer, requirements, datePosted}}}}.
const ProviderKeyedMap = "provider2"

type keyedMapPayload struct {
	Data struct {
		JobsList map[string]keyedMapJob `json:"jobsList"`
	} `json:"data"`
}

type keyedMapJob struct {
	Position string `json:"position"`
	Location struct {
		City   string `json:"city"`
		State  string `json:"state"`
		Remote bool   `json:"remote"`
	} `json:"location"`
	Compensation struct {
		Min      int64  `json:"min"`
		Max      int64  `json:"max"`
		Currency string `json:"currency"`
	} `json:"compensation"`
	Employer struct {
		CompanyName string `json:"companyName"`
		Website     string `json:"website"`
	} `json:"employer"`
	Requirements struct {
		Experience   int      `json:"experience"`
		Technologies []string `json:"technologies"`
	} `json:"requirements"`
	DatePosted string `json:"datePosted"`
}

// ConvertKeyedMap normalizes a keyed-map payload. The map key is the external
// id. The full address is synthesized from city and state, and the salary
// range string is formatted from the numeric bounds. Records come out sorted
// by external id so the conversion is deterministic.
func ConvertKeyedMap(payload []byte) ([]models.UnifiedJob, error) {
	var raw keyedMapPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode keyed-map payload: %w", err)
	}

	ids := make([]string, 0, len(raw.Data.JobsList))
	for id := range raw.Data.JobsList {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	jobs := make([]models.UnifiedJob, 0, len(ids))
	for _, id := range ids {
		j := raw.Data.JobsList[id]

		currency := j.Compensation.Currency
		if currency == "" {
			currency = "USD"
		}

		skills := j.Requirements.Technologies
		if skills == nil {
			skills = []string{}
		}

		jobs = append(jobs, models.UnifiedJob{
			JobID:       id,
			Title:       j.Position,
			Remote:      j.Location.Remote,
			Experience:  j.Requirements.Experience,
			City:        j.Location.City,
			State:       j.Location.State,
			FullAddress: buildFullAddress(j.Location.City, j.Location.State),
			Compensation: models.Compensation{
				Min:         j.Compensation.Min,
				Max:         j.Compensation.Max,
				Currency:    currency,
				SalaryRange: formatSalaryRange(j.Compensation.Min, j.Compensation.Max),
			},
			ContractType: []string{},
			Company: models.CompanyRef{
				Name:    j.Employer.CompanyName,
				Website: j.Employer.Website,
			},
			Industry:   "",
			Skills:     skills,
			PostedDate: j.DatePosted,
		})
	}

	return jobs, nil
}

func buildFullAddress(city, state string) string {
	switch {
	case city == "" && state == "":
		return ""
	case state == "":
		return city
	case city == "":
		return state
	default:
		return city + ", " + state
	}
}

func formatSalaryRange(min, max int64) string {
	if min == 0 && max == 0 {
		return ""
	}

	minStr := ""
	if min != 0 {
		minStr = fmt.Sprintf("$%dk", min/1000)
	}
	maxStr := ""
	if max != 0 {
		maxStr = fmt.Sprintf("$%dk", max/1000)
	}

	sep := ""
	if min != 0 && max != 0 {
		sep = " - "
	}
	return minStr + sep + maxStr
}
