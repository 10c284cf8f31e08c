package session

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("label")
	})
	return v
}()

// CompanyInput is the form data of a company save
type CompanyInput struct {
	Name string `json:"name" label:"company name" validate:"required"`
}

// DepartmentInput is the form data of a department save
type DepartmentInput struct {
	Name string `json:"name" label:"department name" validate:"required"`
}

// PersonInput is the form data of a person save
type PersonInput struct {
	Name  string `json:"name" label:"person name" validate:"required"`
	Email string `json:"email" label:"email" validate:"required"`
}

// ConfigItemInput is the form data of a config item save
type ConfigItemInput struct {
	ID   string `json:"id" label:"id" validate:"required"`
	Name string `json:"name" label:"name" validate:"required"`
}

func (in *CompanyInput) normalize()    { in.Name = strings.TrimSpace(in.Name) }
func (in *DepartmentInput) normalize() { in.Name = strings.TrimSpace(in.Name) }

func (in *PersonInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
}

func (in *ConfigItemInput) normalize() {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
}

// ValidationError lists the required fields a save was missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 1 {
		return strings.Join(e.Fields, " and ") + " are required"
	}
	return strings.Join(e.Fields, " and ") + " is required"
}

func (e *ValidationError) Unwrap() error { return ErrMissingField }

type normalizer interface{ normalize() }

// check trims the input in place and reports missing required fields.
func check(in normalizer) error {
	in.normalize()
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fe.Field())
	}
	return verr
}
