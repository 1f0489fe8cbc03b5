package application

import (
	errors "github.com/erensaridag/careermatch/internal"
	"github.com/erensaridag/careermatch/internal/core/common/validation"
)

// UpdateStatusDTO carries a status decision from a reviewing company.
type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d UpdateStatusDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", d.Status).
		Required().
		OneOf([]string{StatusPending, StatusAccepted, StatusRejected}, errors.ErrCodeInvalidStatus)
	return v.Validate()
}
