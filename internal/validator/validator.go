package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Report JSON field names so validation messages match the wire format
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom "notblank" validator - rejects whitespace-only strings
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return !strings.ContainsRune(str, 0)
	})

	// Decimals reach the rules below as their string form and are compared
	// as decimals, never as float64.
	v.RegisterCustomTypeFunc(decimalString, decimal.Decimal{})
	_ = v.RegisterValidation("decimal_scale", decimalRule(func(d, param decimal.Decimal) bool {
		places := int32(param.IntPart())
		return d.Equal(d.Truncate(places))
	}))
	_ = v.RegisterValidation("decimal_gt", decimalRule(decimal.Decimal.GreaterThan))
	_ = v.RegisterValidation("decimal_lte", decimalRule(decimal.Decimal.LessThanOrEqual))

	return v
}

// MaxDecimalExponent bounds the exponent of decimals the decimal_* rules accept.
// Comparing or truncating a decimal expands 10^|exponent|.
const MaxDecimalExponent = 18

// unboundedDecimal is what decimalString yields for an out-of-bounds exponent;
// it fails every decimal_* rule.
const unboundedDecimal = "unbounded"

func decimalString(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	if exp := d.Exponent(); exp < -MaxDecimalExponent || exp > MaxDecimalExponent {
		return unboundedDecimal
	}
	return d.String()
}

// decimalRule builds a validation comparing the field against the tag parameter.
func decimalRule(cmp func(d, param decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		param, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(d, param)
	}
}
