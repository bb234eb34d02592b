package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validation failure kinds. ErrWrongType covers values carrying the wrong type
// altogether (a boolean where a number is required); ErrInvalidValue covers
// well-typed values that fail a shape or range rule. Callers branch with
// errors.Is.
var (
	ErrWrongType    = errors.New("wrong type")
	ErrInvalidValue = errors.New("invalid value")
)

// FieldError reports a single invalid field together with the failure kind.
type FieldError struct {
	Field string
	Kind  error
	msg   string
}

func (e *FieldError) Error() string { return e.msg }

// Unwrap exposes the failure kind for errors.Is checks.
func (e *FieldError) Unwrap() error { return e.Kind }

// WrongTypeError builds a type-kind field failure.
func WrongTypeError(field, format string, args ...interface{}) error {
	return &FieldError{Field: field, Kind: ErrWrongType, msg: fmt.Sprintf(format, args...)}
}

// InvalidValueError builds a value-kind field failure.
func InvalidValueError(field, format string, args ...interface{}) error {
	return &FieldError{Field: field, Kind: ErrInvalidValue, msg: fmt.Sprintf(format, args...)}
}

func typeError(field, format string, args ...interface{}) error {
	return WrongTypeError(field, format, args...)
}

func valueError(field, format string, args ...interface{}) error {
	return InvalidValueError(field, format, args...)
}

// ValidateName checks that a name-like field is non-empty once trimmed and
// returns the trimmed value.
func ValidateName(value, field string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", valueError(field, "%s cannot be empty", field)
	}
	return v, nil
}

// ValidateEmail checks the address syntax and returns it lowercased.
func ValidateEmail(value string) (string, error) {
	v, err := ValidateName(value, "email")
	if err != nil {
		return "", err
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", valueError("email", "invalid email: %q", value)
	}
	return strings.ToLower(v), nil
}

// ValidateCohort rejects negative cohort numbers.
func ValidateCohort(value int) (int, error) {
	if value < 0 {
		return 0, valueError("cohort", "cohort must not be negative")
	}
	return value, nil
}

// CohortFromValue validates a dynamically typed cohort as decoded from a
// storage document. Booleans are rejected on their own branch so they never
// sneak through an integer conversion.
func CohortFromValue(value interface{}) (int, error) {
	switch v := value.(type) {
	case bool:
		return 0, typeError("cohort", "cohort must be a number, not a boolean")
	case int:
		return ValidateCohort(v)
	case int32:
		return ValidateCohort(int(v))
	case int64:
		return ValidateCohort(int(v))
	default:
		return 0, typeError("cohort", "cohort must be a number")
	}
}

// ValidateID enforces that an identifier is string-typed and shaped like a hex
// object id. The two failures carry distinct messages.
func ValidateID(value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", valueError("id", "identifier must be a string")
	}
	if _, err := primitive.ObjectIDFromHex(s); err != nil {
		return "", valueError("id", "identifier %q is not a valid object id", s)
	}
	return s, nil
}
