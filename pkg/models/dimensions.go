package models

// Dimension rows are created lazily on first reference and never updated or
// deleted. Natural keys (name/label) are unique.

type State struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// City uniqueness is by name only in the current design, not scoped per state.
type City struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	StateID int64  `db:"state_id" json:"stateId"`
}

type Company struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Website string `db:"website" json:"website"`
}

type Industry struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Skill struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type ContractType struct {
	ID    int64  `db:"id" json:"id"`
	Label string `db:"label" json:"label"`
}

type JobSkill struct {
	ID      int64 `db:"id" json:"id"`
	JobID   int64 `db:"job_id" json:"jobId"`
	SkillID int64 `db:"skill_id" json:"skillId"`
}

type JobContractType struct {
	ID             int64 `db:"id" json:"id"`
	JobID          int64 `db:"job_id" json:"jobId"`
	ContractTypeID int64 `db:"contract_type_id" json:"contractTypeId"`
}
