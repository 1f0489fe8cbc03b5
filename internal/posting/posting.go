package posting

import (
	"errors"
	"strings"
	"time"
)

// Posting is an internship listing owned by a company user. The id is the
// authoritative store key and is exposed to clients unchanged.
type Posting struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Company     string    `json:"company" gorm:"column:company;not null"`
	CompanyID   string    `json:"company_id" gorm:"column:company_id;not null;index"`
	Location    string    `json:"location"`
	Duration    string    `json:"duration"`
	Salary      string    `json:"salary"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (Posting) TableName() string {
	return "internships"
}

var (
	ErrPostingNotFound    = errors.New("internship posting not found")
	ErrUnauthorizedAccess = errors.New("unauthorized access to posting")
)

// IsWellFormed reports whether the row carries the strings every consumer
// assumes are present. Rows failing this are skipped from list results rather
// than failing the whole call.
func (p *Posting) IsWellFormed() bool {
	return p.Title != "" && p.Company != "" && p.Location != ""
}

// Matches reports whether the posting matches a free-text search query,
// case-insensitive over title, company name and location.
func (p *Posting) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Company), q) ||
		strings.Contains(strings.ToLower(p.Location), q)
}

// updatableFields is the partial-merge whitelist for posting edits. Identity
// and ownership columns stay immutable.
var updatableFields = map[string]bool{
	"title":       true,
	"company":     true,
	"location":    true,
	"duration":    true,
	"salary":      true,
	"description": true,
	"is_active":   true,
}

func FilterUpdatableFields(fields map[string]interface{}) map[string]interface{} {
	filtered := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if updatableFields[k] {
			filtered[k] = v
		}
	}
	return filtered
}
