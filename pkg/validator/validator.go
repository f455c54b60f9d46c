package validator

import (
	"fmt"
	"regexp"

	"github.com/MediumMasala/branch-redirect-service/pkg/response"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	slugPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
)

func init() {
	validate = validator.New()

	validate.RegisterValidation("slug", validateSlug)
	validate.RegisterValidation("phone", validatePhone)
}

func Validate(data interface{}) []response.ValidationError {
	var validationErrors []response.ValidationError

	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, response.ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func getErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid absolute URL", field)
	case "slug":
		return fmt.Sprintf("%s may only contain letters, digits, underscores and hyphens", field)
	case "phone":
		return fmt.Sprintf("%s must be a phone number in international digits-only form", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
