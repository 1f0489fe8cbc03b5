package auth

import (
	"github.com/erensaridag/careermatch/internal/core/common/validation"
)

// SignUpDTO is the transport shape for account registration. Role is fixed at
// creation and never changed by any later operation.
type SignUpDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// ResetPasswordDTO for password reset requests
type ResetPasswordDTO struct {
	Email string `json:"email"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d SignUpDTO) Validate() error {
	if err := validation.ValidateEmail(d.Email); err != nil {
		return err
	}
	if err := validation.ValidatePassword(d.Password); err != nil {
		return err
	}
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if err := validation.ValidateRole(d.Role); err != nil {
		return err
	}
	return nil
}

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

// Validate for refresh token DTO
func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}

func (d ResetPasswordDTO) Validate() error {
	if err := validation.ValidateEmail(d.Email); err != nil {
		return ValidationError{Msg: err.GetDetailedMessage()}
	}
	return nil
}
