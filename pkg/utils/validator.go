package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents the structure of a validation error response.
type ErrorResponse struct {
	Errors []CError `json:"errors"`
}

// CError represents a single validation error.
type CError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// Validator wraps the validator instance from the go-playground/validator package.
type Validator struct {
	validator *validator.Validate
}

// NewValidator returns a Validator with the Arvue custom rules registered
// and JSON tag names reported back to clients.
func NewValidator() *Validator {
	v := validator.New()

	CustomValidation(v)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validator: v}
}

// Validate validates the input struct and returns a JSON-friendly error
// response, or nil when the struct is valid.
func (v *Validator) Validate(str interface{}) *ErrorResponse {
	err := v.validator.Struct(str)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ErrorResponse{Errors: []CError{{Field: "", Msg: err.Error()}}}
	}
	response := ErrorResponse{Errors: make([]CError, 0, len(validationErrors))}
	for _, err := range validationErrors {
		field := err.Field()
		message := getErrorMessage(field, err.Tag(), err.Param())
		response.Errors = append(response.Errors, CError{Field: field, Msg: message})
	}
	return &response
}

// getErrorMessage returns the error message based on the field and tag.
func getErrorMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, param)
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, param)
	case "collectiontype":
		return fmt.Sprintf("%s must be either tour or exposition", field)
	case "genrename":
		return fmt.Sprintf("%s can only contain letters, digits, spaces and hyphens", field)
	default:
		return fmt.Sprintf("something wrong on %s; %s", field, tag)
	}
}

var genreNameRe = regexp.MustCompile(`^[a-zA-Z0-9\s-]+$`)

func CustomValidation(v *validator.Validate) {
	v.RegisterValidation("collectiontype", func(fl validator.FieldLevel) bool {
		t := strings.ToLower(fl.Field().String())
		return t == "tour" || t == "exposition"
	})
	v.RegisterValidation("genrename", func(fl validator.FieldLevel) bool {
		return genreNameRe.MatchString(fl.Field().String())
	})
}
