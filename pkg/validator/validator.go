package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("date", layoutValidation(DateLayout))
	v.RegisterValidation("clock", layoutValidation(ClockLayout))
	return &CustomValidator{
		validator: v,
	}
}

// layoutValidation accepts strings that parse with the given time layout and
// format back to themselves, so "9:00" is rejected for "15:04".
func layoutValidation(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		parsed, err := time.Parse(layout, value)
		if err != nil {
			return false
		}
		return parsed.Format(layout) == value
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "date":
				errors[field] = field + " must use the YYYY-MM-DD format"
			case "clock":
				errors[field] = field + " must use the HH:MM format"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
