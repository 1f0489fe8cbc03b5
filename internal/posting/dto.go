package posting

import (
	errors "github.com/erensaridag/careermatch/internal"
	"github.com/erensaridag/careermatch/internal/core/common/validation"
)

// CreatePostingDTO is the transport shape for publishing a new internship
// listing. The company name and owner id come from the authenticated user,
// not from the request body.
type CreatePostingDTO struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Duration    string `json:"duration"`
	Salary      string `json:"salary"`
	Description string `json:"description"`
}

func (d CreatePostingDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("title", d.Title).
		Required().
		MaxLength(200)
	v.Field("location", d.Location).
		Required()
	v.Field("description", d.Description).
		MaxLength(5000)
	return v.Validate()
}

// UpdatePostingDTO carries a partial edit. Only whitelisted fields are
// applied; everything else in the payload is dropped.
type UpdatePostingDTO map[string]interface{}
