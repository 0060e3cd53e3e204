package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strings"
)

// Constraint names the rule a value violated.
type Constraint string

const (
	ConstraintObject   Constraint = "object"
	ConstraintRequired Constraint = "required"
	ConstraintType     Constraint = "type"
	ConstraintMinimum  Constraint = "minimum"
	ConstraintMaximum  Constraint = "maximum"
	ConstraintEnum     Constraint = "enum"
	// ConstraintRange marks an integral value outside the signed 64-bit range.
	ConstraintRange    Constraint = "range"
)

// ValidationError reports the first violation found by [Validate].
type ValidationError struct {
	Field      string
	Constraint Constraint
	Message    string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

// Validate checks record against s and returns a *ValidationError for the
// first violation. Required keys are checked first in declaration order, then
// each present field's type, bounds and enum in declaration order, so the
// reported error is deterministic. Keys not declared by s are ignored.
func Validate(s Schema, record map[string]any) error {
	if record == nil {
		return &ValidationError{Constraint: ConstraintObject, Message: "record is not an object"}
	}

	for _, f := range s.fields {
		if !f.Required {
			continue
		}
		if _, ok := record[f.Name]; !ok {
			return &ValidationError{
				Field:      f.Name,
				Constraint: ConstraintRequired,
				Message:    fmt.Sprintf("%q is a required property", f.Name),
			}
		}
	}

	for _, f := range s.fields {
		value, ok := record[f.Name]
		if !ok {
			continue
		}
		if err := validateField(f, value); err != nil {
			return err
		}
	}

	return nil
}

func validateField(f Field, value any) error {
	switch f.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return typeError(f, value)
		}
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, s) {
			return &ValidationError{
				Field:      f.Name,
				Constraint: ConstraintEnum,
				Message:    fmt.Sprintf("%q is not one of [%s]", s, strings.Join(f.Enum, ", ")),
			}
		}

	case TypeInteger:
		n, ok := AsInteger(value)
		if !ok {
			if isIntegral(value) {
				return &ValidationError{
					Field:      f.Name,
					Constraint: ConstraintRange,
					Message:    fmt.Sprintf("%s is outside the supported integer range", describe(value)),
				}
			}
			return typeError(f, value)
		}
		if f.Min != nil && n < *f.Min {
			return &ValidationError{
				Field:      f.Name,
				Constraint: ConstraintMinimum,
				Message:    fmt.Sprintf("%d is less than the minimum of %d", n, *f.Min),
			}
		}
		if f.Max != nil && n > *f.Max {
			return &ValidationError{
				Field:      f.Name,
				Constraint: ConstraintMaximum,
				Message:    fmt.Sprintf("%d is greater than the maximum of %d", n, *f.Max),
			}
		}

	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return typeError(f, value)
		}

	default:
		return &ValidationError{
			Field:      f.Name,
			Constraint: ConstraintType,
			Message:    fmt.Sprintf("unsupported schema type %q", f.Type),
		}
	}

	return nil
}

func typeError(f Field, value any) error {
	return &ValidationError{
		Field:      f.Name,
		Constraint: ConstraintType,
		Message:    fmt.Sprintf("%s is not of type %q", describe(value), f.Type),
	}
}

// AsInteger reports whether value is an integral number and returns it.
// Numbers with a zero fractional part (30.0) count as integers; booleans do not.
func AsInteger(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	default:
		return 0, false
	}
}

// isIntegral reports whether value is a whole number of any magnitude.
func isIntegral(value any) bool {
	switch v := value.(type) {
	case json.Number:
		f, ok := new(big.Float).SetString(string(v))
		return ok && f.IsInt()
	case float64:
		return !math.IsInf(v, 0) && v == math.Trunc(v)
	case float32:
		return isIntegral(float64(v))
	default:
		return false
	}
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func describe(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case json.Number:
		return v.String()
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%v", v)
	}
}
