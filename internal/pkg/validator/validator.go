package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Time-of-day validation (HH:MM or HH:MM:SS)
	validate.RegisterValidation("time_of_day", func(fl validator.FieldLevel) bool {
		return timeOfDayRe.MatchString(fl.Field().String())
	})

	// Booking status validation
	validate.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		validStatuses := []string{"PENDING", "CONFIRMED", "IN_PROGRESS", "COMPLETED", "CANCELLED", "REJECTED"}
		for _, s := range validStatuses {
			if status == s {
				return true
			}
		}
		return false
	})

	// Urgency validation
	validate.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
		urgency := fl.Field().String()
		validLevels := []string{"low", "normal", "high", "urgent", ""}
		for _, u := range validLevels {
			if urgency == u {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "datetime":
			errors[field] = "Invalid date format (expected: " + err.Param() + ")"
		case "time_of_day":
			errors[field] = "Invalid time. Expected HH:MM or HH:MM:SS"
		case "booking_status":
			errors[field] = "Invalid status. Must be: PENDING, CONFIRMED, IN_PROGRESS, COMPLETED, CANCELLED, or REJECTED"
		case "urgency":
			errors[field] = "Invalid urgency. Must be: low, normal, high, or urgent"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
