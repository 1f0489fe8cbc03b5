package application

import (
	"errors"
	"time"
)

// Status values an application can hold. Transitions are unconditional
// overwrites so a decision can be revised in either direction.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// Application records one student applying to one internship. The listing
// title and company name are denormalized at apply time so student-facing
// lists survive later edits or deletion of the posting.
type Application struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	StudentID       string    `json:"student_id" gorm:"column:student_id;not null;uniqueIndex:uq_applications_student_internship"`
	InternshipID    string    `json:"internship_id" gorm:"column:internship_id;not null;uniqueIndex:uq_applications_student_internship"`
	InternshipTitle string    `json:"internship_title" gorm:"column:internship_title"`
	CompanyName     string    `json:"company_name" gorm:"column:company_name"`
	Status          string    `json:"status" gorm:"column:status;not null;default:pending"`
	AppliedAt       time.Time `json:"applied_at" gorm:"column:applied_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (Application) TableName() string {
	return "applications"
}

// IsWellFormed reports whether the row carries the fields list consumers
// assume. Rows failing this are skipped from reads and counted.
func (a *Application) IsWellFormed() bool {
	return a.StudentID != "" && a.InternshipID != "" && ValidStatus(a.Status)
}

// ApplicantDetail joins one application with the applying student's profile
// for the company review screen.
type ApplicantDetail struct {
	ApplicationID string    `json:"application_id"`
	Status        string    `json:"status"`
	AppliedAt     time.Time `json:"applied_at"`
	StudentID     string    `json:"student_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	University    string    `json:"university"`
	Major         string    `json:"major"`
	Skills        string    `json:"skills"`
}

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("student has already applied to this internship")
	ErrUnauthorizedAccess  = errors.New("unauthorized access to application")
	ErrInvalidStatus       = errors.New("invalid application status")
)
