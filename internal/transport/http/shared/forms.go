package shared

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateStruct runs the form's validate tags and maps failures to the
// messages the screens show. A nil result means the form passed.
func ValidateStruct(form any) []FieldError {
	err := formValidator().Struct(form)
	if err == nil {
		return nil
	}
	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	fields := make([]FieldError, 0, len(violations))
	for _, violation := range violations {
		fields = append(fields, FieldError{
			Field:   strings.ToLower(violation.Field()[:1]) + violation.Field()[1:],
			Message: messageFor(violation),
		})
	}
	return fields
}

func messageFor(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Must be a valid email address."
	case "min":
		if v.Kind().String() == "string" {
			return fmt.Sprintf("Must be at least %s characters.", v.Param())
		}
		return fmt.Sprintf("Must be at least %s.", v.Param())
	case "max":
		if v.Kind().String() == "string" {
			return fmt.Sprintf("Must be at most %s characters.", v.Param())
		}
		return fmt.Sprintf("Must be at most %s.", v.Param())
	case "eqfield":
		return "Passwords do not match."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(v.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Failed validation rule %q.", v.Tag())
	}
}
