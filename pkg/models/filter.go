package models

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// JobFilter is the query specification for the job search. All fields are
// optional; substring matches are case-insensitive, skills and contract types
// use OR semantics.
type JobFilter struct {
	Title         string   `query:"title" json:"title"`
	Location      string   `query:"location" json:"location"`
	SalaryMin     *int64   `query:"salaryMin" json:"salaryMin" validate:"omitempty,min=0"`
	SalaryMax     *int64   `query:"salaryMax" json:"salaryMax" validate:"omitempty,min=0"`
	Company       string   `query:"company" json:"company"`
	Skills        []string `query:"skills" json:"skills"`
	ContractTypes []string `query:"contractTypes" json:"contractTypes"`
	Page          int      `query:"page" json:"page" validate:"omitempty,min=1"`
	Limit         int      `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

// ApplyDefaults fills in page/limit when unset. Offset math is 1-based.
func (f *JobFilter) ApplyDefaults() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
}

// Offset returns the row offset for the current page.
func (f *JobFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// PaginatedJobs is the search response envelope.
type PaginatedJobs struct {
	Data        []JobView `json:"data"`
	Total       int       `json:"total"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}
