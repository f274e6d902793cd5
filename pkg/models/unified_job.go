package models

// UnifiedJob is the canonical, provider-agnostic job record produced by
// normalization. It is transient: built once per raw provider record, handed to
// the ingestion pipeline, and discarded.
type UnifiedJob struct {
	JobID        string       `json:"jobId" validate:"required"`
	Title        string       `json:"title" validate:"required"`
	Remote       bool         `json:"remote"`
	Experience   int          `json:"experience" validate:"min=0"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	FullAddress  string       `json:"fullAddress"`
	ContractType []string     `json:"contractType"`
	Compensation Compensation `json:"compensation"`
	Company      CompanyRef   `json:"company"`
	Industry     string       `json:"industry"`
	Skills       []string     `json:"skills"`
	PostedDate   string       `json:"postedDate"` // ISO-8601
}

type Compensation struct {
	Min         int64  `json:"min"`
	Max         int64  `json:"max"`
	Currency    string `json:"currency"`
	SalaryRange string `json:"salaryRange"`
}

type CompanyRef struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}
