package validator

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	StoreHandleRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Validator is a validator that validates the given struct.
type Validator interface {
	// Validate validates the given struct
	Validate(s any) error
}

type DefaultValidator struct {
	v *validator.Validate
}

// NewDefaultValidator creates a new default validator.
// It returns a new DefaultValidator and an error if the validator registration fails.
func NewDefaultValidator() (*DefaultValidator, error) {
	v := validator.New()

	// Register custom validators
	if err := v.RegisterValidation("storehandle", validateStoreHandle); err != nil {
		return nil, fmt.Errorf("register storehandle validator: %w", err)
	}

	if err := v.RegisterValidation("weburl", validateWebURL); err != nil {
		return nil, fmt.Errorf("register weburl validator: %w", err)
	}

	return &DefaultValidator{v: v}, nil
}

func (v DefaultValidator) Validate(s any) error {
	return v.v.Struct(s)
}

// IsValidationError checks if the given error is a validation error
func IsValidationError(err error) bool {
	_, ok := err.(validator.ValidationErrors)
	return ok
}

func ValidationErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "required_without":
		return fmt.Sprintf("is required when %s is not set", fe.Param())
	case "storehandle":
		return "must be a lowercase store handle such as uniqlo-us"
	case "weburl":
		return "must be an absolute http or https URL"
	default:
		return "is invalid"
	}
}

func validateStoreHandle(fl validator.FieldLevel) bool {
	return StoreHandleRegex.MatchString(fl.Field().String())
}

func validateWebURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
