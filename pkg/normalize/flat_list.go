package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

// ProviderFlatList is the identity of the flat-list schema provider:
// {"jobs": [{jobId, title, details: {location, type, salaryRange}, company, skills, postedDate}]}.
const ProviderFlatList = "provider1"

var salaryRangeRe = regexp.MustCompile(`\$(\d+)k\s*-\s*\$(\d+)k`)

type flatListPayload struct {
	Jobs []flatListJob `json:"jobs"`
}

type flatListJob struct {
	JobID      string          `json:"jobId"`
	Title      string          `json:"title"`
	Details    flatListDetails `json:"details"`
	Company    flatListCompany `json:"company"`
	Skills     []string        `json:"skills"`
	PostedDate string          `json:"postedDate"`
}

type flatListDetails struct {
	Location    string `json:"location"`
	Type        string `json:"type"`
	SalaryRange string `json:"salaryRange"`
}

type flatListCompany struct {
	Name     string `json:"name"`
	Website  string `json:"website"`
	Industry string `json:"industry"`
}

// ConvertFlatList normalizes a flat-list payload. The location string is split
// on the first comma into city/state; a job is remote when the city reads
// "remote" in any casing; a "$Nk - $Mk" salary range parses to numeric bounds
// and anything else yields zero min/max.
func ConvertFlatList(payload []byte) ([]models.UnifiedJob, error) {
	var raw flatListPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode flat-list payload: %w", err)
	}

	jobs := make([]models.UnifiedJob, 0, len(raw.Jobs))
	for _, j := range raw.Jobs {
		city, state := splitLocation(j.Details.Location)
		min, max := parseSalaryRange(j.Details.SalaryRange)

		contractType := []string{}
		if j.Details.Type != "" {
			contractType = []string{j.Details.Type}
		}

		skills := j.Skills
		if skills == nil {
			skills = []string{}
		}

		jobs = append(jobs, models.UnifiedJob{
			JobID:       j.JobID,
			Title:       j.Title,
			Remote:      strings.EqualFold(city, "remote"),
			Experience:  0,
			City:        city,
			State:       state,
			FullAddress: j.Details.Location,
			Compensation: models.Compensation{
				Min:         min,
				Max:         max,
				Currency:    "USD",
				SalaryRange: j.Details.SalaryRange,
			},
			ContractType: contractType,
			Company: models.CompanyRef{
				Name:    j.Company.Name,
				Website: j.Company.Website,
			},
			Industry:   j.Company.Industry,
			Skills:     skills,
			PostedDate: j.PostedDate,
		})
	}

	return jobs, nil
}

func splitLocation(location string) (city, state string) {
	if location == "" {
		return "", ""
	}
	parts := strings.SplitN(location, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}

func parseSalaryRange(rangeStr string) (min, max int64) {
	matches := salaryRangeRe.FindStringSubmatch(rangeStr)
	if matches == nil {
		return 0, 0
	}
	minK, _ := strconv.ParseInt(matches[1], 10, 64)
	maxK, _ := strconv.ParseInt(matches[2], 10, 64)
	return minK * 1000, maxK * 1000
}
