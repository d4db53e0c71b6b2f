package page

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError lists every field that failed client-side checks.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Validate requires every Required field to be non-blank and applies each
// field's Rules to the values that are present.
func Validate(fields []Field, values map[string]string) error {
	var problems []string
	for _, f := range fields {
		value := strings.TrimSpace(values[f.Name])
		if value == "" {
			if f.Required {
				problems = append(problems, f.Label+" is required")
			}
			continue
		}
		if f.Rules == "" {
			continue
		}
		if err := validate.Var(value, f.Rules); err != nil {
			problems = append(problems, describe(f, err))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func describe(f Field, err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return f.Label + " is invalid"
	}
	switch errs[0].Tag() {
	case "email":
		return f.Label + " must be a valid email address"
	case "numeric", "number":
		return f.Label + " must be a number"
	case "max":
		return f.Label + " is too long"
	default:
		return f.Label + " is invalid"
	}
}
