package models

import (
	"github.com/go-playground/validator/v10"
)

type Role string

const (
	RoleStudent       Role = "student"
	RoleProfessor     Role = "professor"
	RoleGuestReviewer Role = "guest_reviewer"
)

// Account is a stored identity. All three directories (students, professors,
// guest reviewers) share this shape; the role tag tells them apart. Password
// is kept only as a one-way credential hash.
type Account struct {
	ID             string `json:"user_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	CredentialHash string `json:"password"`
	Role           Role   `json:"user_type" validate:"required"`
	NationalID     string `json:"national_id,omitempty"`
	Major          string `json:"major,omitempty"`
	Affiliation    string `json:"affiliation,omitempty"`
	Email          string `json:"email,omitempty"`
}

func (a *Account) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}
