package models

import (
	"github.com/go-playground/validator/v10"
)

// CourseSlot is one thesis course offering. Capacity counts open request
// slots: it is decremented when a thesis request is submitted, not when the
// professor approves it, and is never incremented back.
type CourseSlot struct {
	CourseID      string `json:"course_id" validate:"required"`
	Title         string `json:"title" validate:"required"`
	ProfessorID   string `json:"professor_id"`
	ProfessorName string `json:"professor"`
	Major         string `json:"major" validate:"required"`
	Capacity      int    `json:"capacity" validate:"gte=0"`
}

func (c *CourseSlot) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}
