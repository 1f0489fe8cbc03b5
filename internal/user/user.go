package user

import (
	"errors"
	"time"
)

// Profile carries everything about a user except credentials. Role is written
// once at sign-up; UpdatableFields never includes it.
type Profile struct {
	UserID string `json:"user_id" gorm:"primaryKey;column:user_id"`
	Email  string `json:"email" gorm:"column:email;not null"`
	Name   string `json:"name" gorm:"column:name;not null"`
	Role   string `json:"role" gorm:"column:role;not null"`

	// Student fields
	Phone          string `json:"phone,omitempty" gorm:"column:phone"`
	University     string `json:"university,omitempty" gorm:"column:university"`
	Major          string `json:"major,omitempty" gorm:"column:major"`
	GraduationYear string `json:"graduation_year,omitempty" gorm:"column:graduation_year"`
	Skills         string `json:"skills,omitempty" gorm:"column:skills"`

	// Company fields
	Address  string `json:"address,omitempty" gorm:"column:address"`
	Website  string `json:"website,omitempty" gorm:"column:website"`
	Industry string `json:"industry,omitempty" gorm:"column:industry"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

const (
	RoleStudent = "student"
	RoleCompany = "company"
)

var (
	ErrNotFound = errors.New("user not found")
)

// updatableFields is the partial-merge whitelist. Identity and role columns
// are immutable through profile updates.
var updatableFields = map[string]bool{
	"name":            true,
	"phone":           true,
	"university":      true,
	"major":           true,
	"graduation_year": true,
	"skills":          true,
	"address":         true,
	"website":         true,
	"industry":        true,
}

// FilterUpdatableFields strips everything a caller may not change from a
// partial update map. Fields absent from the map stay untouched in the store.
func FilterUpdatableFields(fields map[string]interface{}) map[string]interface{} {
	filtered := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if updatableFields[k] {
			filtered[k] = v
		}
	}
	return filtered
}
