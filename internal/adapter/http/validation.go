package http

import (
	"errors"
	"reflect"
	"strings"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/usecase/ledger"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// account number = exactly 9 digits
	_ = v.RegisterValidation("acctno", func(fl validator.FieldLevel) bool {
		return account.ValidNumber(fl.Field().String())
	})
	// pin = exactly 6 digits
	_ = v.RegisterValidation("pin6", func(fl validator.FieldLevel) bool {
		return account.ValidPIN(fl.Field().String())
	})
	// decimal string, max 2 decimal places
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		_, err := ledger.ParseAmount(fl.Field().String())
		return err == nil
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "acctno":
			out = append(out, FieldError{Field: field, Message: "must be 9 digits"})
		case "pin6":
			out = append(out, FieldError{Field: field, Message: "must be 6 digits"})
		case "money":
			out = append(out, FieldError{Field: field, Message: "must be a number with at most 2 decimal places"})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of " + e.Param()})
		case "datetime":
			out = append(out, FieldError{Field: field, Message: "must be a date formatted " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
