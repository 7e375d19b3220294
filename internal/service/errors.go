package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// User-visible messages shared with the transport layer.
const (
	MsgInvalidCredentials = "Please enter a correct email and password."
	MsgEmailTaken         = "This email is already registered."
	MsgUnknownEmail       = "There is no user registered with this email address."
	MsgPasswordMismatch   = "The two password fields didn't match."
	MsgEmailImmutable     = "Email address cannot be changed."
	MsgInvalidImage       = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	// Unknown email and wrong password are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIntegrity indicates stored data that violates an account invariant,
	// such as a user without its profile row.
	ErrIntegrity = errors.New("account integrity violation")
	// ErrInvalidResetToken covers malformed, expired, forged and already used reset tokens.
	ErrInvalidResetToken = errors.New("invalid or expired password reset token")
)

// ValidationError maps form field names to a user-facing message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has an error.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("notnumeric", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, r := range s {
			if !unicode.IsDigit(r) {
				return true
			}
		}
		return s == ""
	}); err != nil {
		panic(err)
	}
	return v
}

// check runs struct validation and merges the failures into verr.
func check(verr *ValidationError, input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", input, err)
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return nil
}

func message(fe validator.FieldError) string {
	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return "Select a valid choice."
	case "eqfield":
		return MsgPasswordMismatch
	case "notnumeric":
		return "This password is entirely numeric."
	case "min":
		if numeric {
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	default:
		return "Enter a valid value."
	}
}
