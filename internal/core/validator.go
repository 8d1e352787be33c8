package core

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"hrdocs/internal/license"
	"hrdocs/internal/types"
)

// Validator wraps go-playground/validator with the domain-specific rules the
// request DTOs use. Field names in error details follow the json tag so
// clients see the names they actually sent.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator and registers custom validation tags.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	// Report field names from json tags rather than Go struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// license_code validates the canonical 8-character code format after
	// normalization, so "  abcd2345 " passes but "ABCD234O" does not.
	if err := v.RegisterValidation("license_code", func(fl validator.FieldLevel) bool {
		return license.ValidateFormat(license.Normalize(fl.Field().String())) == nil
	}); err != nil {
		// Registration only fails on an empty tag name; treat it as a
		// programming error.
		panic(err)
	}

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

// ValidateStruct validates a request DTO against its validate tags. On failure
// it returns a *types.AppError with code "validation_failed" and a details map
// of field name to violated rule.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: the caller passed something that is not a
		// struct. This is a programming error, not client input.
		v.logger.Error("validator invoked with non-struct value",
			slog.String("error", err.Error()),
		)
		return types.NewAppError(types.ErrCodeInternalUnexpected, "invalid validation target", err)
	}

	details := make(map[string]any, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = ruleMessage(fe)
	}

	return types.NewAppErrorWithDetails(
		types.ErrCodeValidationFailed,
		"request validation failed",
		nil,
		details,
	)
}

// ruleMessage renders a single violated rule as a short human-readable string.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "license_code":
		return "must be an 8-character license code"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	default:
		return "failed rule: " + fe.Tag()
	}
}
