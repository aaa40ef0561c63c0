package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apierrors "fruitdash/internal/errors"
)

// maxFruitLength bounds a single fruit name in a selection
const maxFruitLength = 100

// Validator checks parsed request structs using their validate tags
type Validator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewValidator creates a validator that reports fields by their JSON names
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New()

	v.RegisterValidation("fruit", isValidFruit)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validator: v,
		logger:    logger.With(slog.String("component", "validator")),
	}
}

// ValidateStruct validates a struct and returns an *apierrors.APIError
// listing every failed field
func (m *Validator) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	m.logger.Debug("request validation failed", slog.Int("errors", len(validationErrors)))

	return apierrors.NewValidationErrors(validationErrors)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "fruit":
		return fmt.Sprintf("%s must be a non-empty fruit name of at most %d characters", field, maxFruitLength)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidFruit accepts printable, non-blank names of bounded length
func isValidFruit(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.TrimSpace(name) == "" || len([]rune(name)) > maxFruitLength {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// QueryParamValidator reads multi-valued query parameters. Names are only
// ever repeated (?fruit=a&fruit=b) since a fruit name may contain a comma;
// integers may also be comma-separated (?year=2019,2020).
type QueryParamValidator struct{}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator() *QueryParamValidator {
	return &QueryParamValidator{}
}

// Strings returns the trimmed, non-empty values of param in request order
func (v *QueryParamValidator) Strings(r *http.Request, param string) []string {
	var values []string
	for _, raw := range r.URL.Query()[param] {
		if raw = strings.TrimSpace(raw); raw != "" {
			values = append(values, raw)
		}
	}
	return values
}

// Ints parses every value of param as an integer
func (v *QueryParamValidator) Ints(r *http.Request, param string) ([]int, error) {
	var values []string
	for _, raw := range v.Strings(r, param) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	if len(values) == 0 {
		return nil, nil
	}

	ints := make([]int, 0, len(values))
	for _, s := range values {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, apierrors.ErrValidation(param, fmt.Sprintf("%q is not a valid integer", s))
		}
		ints = append(ints, n)
	}
	return ints, nil
}

// Enum returns param when it is one of allowed, or defaultValue when absent
func (v *QueryParamValidator) Enum(r *http.Request, param string, allowed []string, defaultValue string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(param)))
	if value == "" {
		return defaultValue, nil
	}
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", ")))
}
