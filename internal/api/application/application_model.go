package application

import (
	"io"
	"time"
)

// Application status workflow codes.
const (
	StatusReceived        = "ST1"
	StatusFirstInterview  = "ST2"
	StatusSecondInterview = "ST3"
	StatusAccepted        = "ST4"
	StatusRejected        = "ST5"
)

// ValidStatus reports whether code names one of the workflow states. Any
// state may move to any other; only membership is checked.
func ValidStatus(code string) bool {
	switch code {
	case StatusReceived, StatusFirstInterview, StatusSecondInterview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application is one user's submission for one recruit.
type Application struct {
	ID        string                 `json:"id"`
	RecruitID string                 `json:"recruit_id"`
	UserID    string                 `json:"user_id"`
	Content   map[string]interface{} `json:"content"`
	Status    string                 `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Attachment is the single stored file URL for an application.
type Attachment struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	FileURL       string `json:"file_url"`
}

// Upload carries an incoming multipart file into the service layer.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// AdminApplication is the joined view served to administrators.
type AdminApplication struct {
	ID          string                 `json:"id"`
	Content     map[string]interface{} `json:"content"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	RecruitID   string                 `json:"recruit_id"`
	Position    string                 `json:"position"`
	JobOpenings string                 `json:"job_openings"`
	Author      string                 `json:"author"`
	WorkType    string                 `json:"work_type"`
	CareerType  string                 `json:"career_type"`
	Deadline    time.Time              `json:"deadline"`
}

// AdminApplicationDetail additionally identifies the applicant.
type AdminApplicationDetail struct {
	AdminApplication
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
}

// AdminListFilter narrows the admin listing; empty fields match everything.
type AdminListFilter struct {
	CareerType string
	Position   string
	Status     string
}

// UpdateStatusRequest is the admin status transition payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
