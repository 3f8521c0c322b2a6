package httpx

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("isodate", validateISODate)
	_ = validate.RegisterValidation("shelf", validateShelf)
	_ = validate.RegisterValidation("quarterstep", validateQuarterStep)
}

func validateISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !isoDateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func validateShelf(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "to_read", "reading", "read":
		return true
	default:
		return false
	}
}

func validateQuarterStep(fl validator.FieldLevel) bool {
	v := fl.Field().Float() * 4
	return v == float64(int64(v))
}

// ValidateStruct runs struct tag validation and returns one detail per failed field.
func ValidateStruct(s any) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "gte", "lte":
			message = fmt.Sprintf("%s is out of range (%s %s)", field, fe.Tag(), param)
		case "isodate":
			message = fmt.Sprintf("%s must be a YYYY-MM-DD date", field)
		case "shelf":
			message = fmt.Sprintf("%s must be one of to_read, reading, read", field)
		case "quarterstep":
			message = fmt.Sprintf("%s must be a multiple of 0.25", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		details = append(details, ErrorDetail{
			Field:   strings.ToLower(field[:1]) + field[1:],
			Message: message,
		})
	}
	return details
}
