package web

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// IntParam requires the path parameter to parse as a base-10 int64.
func IntParam(name, message string) Rule {
	return func(in *Input) *FieldError {
		if _, err := strconv.ParseInt(in.Param(name), 10, 64); err != nil {
			return &FieldError{Field: name, Message: message}
		}
		return nil
	}
}

// NonEmptyString requires a body field holding a string with at least one non-space character.
func NonEmptyString(field, message string) Rule {
	return func(in *Input) *FieldError {
		v, _ := in.Field(field)
		s, ok := v.(string)
		if !ok || validate.Var(strings.TrimSpace(s), "required") != nil {
			return &FieldError{Field: field, Message: message}
		}
		return nil
	}
}

// PositiveDecimalMessages are the messages reported by PositiveDecimal.
type PositiveDecimalMessages struct {
	Empty       string
	Invalid     string
	NotPositive string
}

// PositiveDecimal requires a body field holding a number, or a numeric string, greater than zero.
func PositiveDecimal(field string, msgs PositiveDecimalMessages) Rule {
	return func(in *Input) *FieldError {
		v, ok := in.Field(field)
		if !ok || v == nil {
			return &FieldError{Field: field, Message: msgs.Empty}
		}

		if s, ok := v.(string); ok && s == "" {
			return &FieldError{Field: field, Message: msgs.Empty}
		}
		d, err := parseDecimal(v)
		if err != nil {
			return &FieldError{Field: field, Message: msgs.Invalid}
		}
		if !d.IsPositive() {
			return &FieldError{Field: field, Message: msgs.NotPositive}
		}
		return nil
	}
}

var errNotDecimal = errors.New("value is not a number or numeric string")

// parseDecimal reads a JSON number or a numeric string exactly as sent.
func parseDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case json.Number:
		return decimal.NewFromString(t.String())
	case string:
		if err := validate.Var(t, "numeric"); err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(t)
	default:
		return decimal.Zero, errNotDecimal
	}
}

// Boolean requires a body field holding a JSON boolean.
func Boolean(field, message string) Rule {
	return func(in *Input) *FieldError {
		v, _ := in.Field(field)
		if _, ok := v.(bool); !ok {
			return &FieldError{Field: field, Message: message}
		}
		return nil
	}
}
