package recruit

import "time"

// Career type codes carried on a posting.
const (
	CareerNew         = "N"  // entry level
	CareerExperienced = "C"  // experienced hires
	CareerAny         = "NC" // either
)

// ValidCareerType reports whether code is one of the accepted career types.
func ValidCareerType(code string) bool {
	switch code {
	case CareerNew, CareerExperienced, CareerAny:
		return true
	}
	return false
}

// Recruit is a job posting with its associated stack names.
type Recruit struct {
	ID            string    `json:"id"`
	Position      string    `json:"position"`
	Description   string    `json:"description"`
	WorkType      string    `json:"work_type"`
	CareerType    string    `json:"career_type"`
	JobOpenings   string    `json:"job_openings"`
	Author        string    `json:"author"`
	Deadline      time.Time `json:"deadline"`
	MinimumSalary float64   `json:"minimum_salary"`
	MaximumSalary float64   `json:"maximum_salary"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Stacks        []string  `json:"stacks"`
}

// CreateRecruitRequest is the admin create payload. Stacks are raw names
// that get reconciled into stack rows.
type CreateRecruitRequest struct {
	Position      string   `json:"position"`
	Description   string   `json:"description"`
	Stacks        []string `json:"stacks"`
	JobOpenings   string   `json:"job_openings"`
	WorkType      string   `json:"work_type"`
	CareerType    string   `json:"career_type"`
	Deadline      string   `json:"deadline"`
	MinimumSalary float64  `json:"minimum_salary"`
	MaximumSalary float64  `json:"maximum_salary"`
}

// UpdateRecruitRequest carries a partial update; nil fields are untouched.
// A non-nil Stacks slice triggers reconciliation, including the empty slice
// which clears every association.
type UpdateRecruitRequest struct {
	Position      *string   `json:"position"`
	Description   *string   `json:"description"`
	Stacks        *[]string `json:"stacks"`
	JobOpenings   *string   `json:"job_openings"`
	WorkType      *string   `json:"work_type"`
	CareerType    *string   `json:"career_type"`
	Deadline      *string   `json:"deadline"`
	MinimumSalary *float64  `json:"minimum_salary"`
	MaximumSalary *float64  `json:"maximum_salary"`
}

// UpdateRecruitParams is the repository-level shape after validation.
type UpdateRecruitParams struct {
	Position      *string
	Description   *string
	JobOpenings   *string
	WorkType      *string
	CareerType    *string
	Deadline      *time.Time
	MinimumSalary *float64
	MaximumSalary *float64
}

// ListFilter narrows and orders the public recruit listing.
type ListFilter struct {
	Position string
	Sort     string
}
