package models

import "time"

// Job is a persisted job posting. Rows are written once at ingestion and never
// updated; the first write for an external id wins.
type Job struct {
	ID                      int64     `db:"id" json:"id"`
	ExternalID              string    `db:"external_id" json:"externalId"`
	Title                   string    `db:"title" json:"title"`
	Remote                  bool      `db:"remote" json:"remote"`
	Experience              int       `db:"experience" json:"experience"`
	CityID                  int64     `db:"city_id" json:"cityId"`
	FullAddress             string    `db:"full_address" json:"fullAddress"`
	CompensationMin         int64     `db:"compensation_min" json:"compensationMin"`
	CompensationMax         int64     `db:"compensation_max" json:"compensationMax"`
	CompensationCurrency    string    `db:"compensation_currency" json:"compensationCurrency"`
	CompensationSalaryRange string    `db:"compensation_salary_range" json:"compensationSalaryRange"`
	CompanyID               int64     `db:"company_id" json:"companyId"`
	IndustryID              int64     `db:"industry_id" json:"industryId"`
	PostedDate              time.Time `db:"posted_date" json:"postedDate"`
	CreatedAt               time.Time `db:"created_at" json:"createdAt"`
}

// JobView is a job joined to its dimensions, as returned by the search query.
// Skills and ContractTypes are hydrated in a second pass over the page's ids.
type JobView struct {
	ID                      int64     `db:"id" json:"id"`
	ExternalID              string    `db:"external_id" json:"jobId"`
	Title                   string    `db:"title" json:"title"`
	Remote                  bool      `db:"remote" json:"remote"`
	Experience              int       `db:"experience" json:"experience"`
	City                    string    `db:"city" json:"city"`
	State                   string    `db:"state" json:"state"`
	FullAddress             string    `db:"full_address" json:"fullAddress"`
	CompensationMin         int64     `db:"compensation_min" json:"compensationMin"`
	CompensationMax         int64     `db:"compensation_max" json:"compensationMax"`
	CompensationCurrency    string    `db:"compensation_currency" json:"compensationCurrency"`
	CompensationSalaryRange string    `db:"compensation_salary_range" json:"compensationSalaryRange"`
	Company                 string    `db:"company" json:"company"`
	CompanyWebsite          string    `db:"company_website" json:"companyWebsite"`
	Industry                string    `db:"industry" json:"industry"`
	PostedDate              time.Time `db:"posted_date" json:"postedDate"`
	Skills                  []string  `db:"-" json:"skills"`
	ContractTypes           []string  `db:"-" json:"contractTypes"`
}
