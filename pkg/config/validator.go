package config

import (
	"fmt"
	"reflect"
	"strings"
)

// Validators address fields by Go field name; nested structs use dot
// notation (e.g. "Load.Callers"). Pointers along the path are followed.

// RequiredFields validates that required fields are not zero values
func RequiredFields(fields ...string) Validator {
	return ValidatorFunc(func(config interface{}) error {
		var missing []string
		for _, name := range fields {
			v, err := lookupField(config, name)
			if err != nil {
				return err
			}
			if v.IsZero() {
				missing = append(missing, name)
			}
		}

		if len(missing) > 0 {
			return fmt.Errorf("required fields are missing: %s", strings.Join(missing, ", "))
		}
		return nil
	})
}

// RangeValidator validates that a numeric field is within [min, max]
func RangeValidator(fieldName string, min, max float64) Validator {
	return ValidatorFunc(func(config interface{}) error {
		n, err := numericField(config, fieldName)
		if err != nil {
			return err
		}
		if n < min || n > max {
			return fmt.Errorf("field %s value %g is out of range [%g, %g]", fieldName, n, min, max)
		}
		return nil
	})
}

// AtMostFieldValidator validates that a numeric field does not exceed
// another one, e.g. a per-task work time against the submission interval.
func AtMostFieldValidator(fieldName, limitField string) Validator {
	return ValidatorFunc(func(config interface{}) error {
		n, err := numericField(config, fieldName)
		if err != nil {
			return err
		}
		limit, err := numericField(config, limitField)
		if err != nil {
			return err
		}
		if n > limit {
			return fmt.Errorf("field %s value %g exceeds %s value %g", fieldName, n, limitField, limit)
		}
		return nil
	})
}

// OneOfValidator validates that a field value is one of the allowed values
func OneOfValidator(fieldName string, allowedValues ...interface{}) Validator {
	return ValidatorFunc(func(config interface{}) error {
		v, err := lookupField(config, fieldName)
		if err != nil {
			return err
		}

		got := v.Interface()
		for _, allowed := range allowedValues {
			if reflect.DeepEqual(got, allowed) {
				return nil
			}
		}
		return fmt.Errorf("field %s value %v is not one of allowed values: %v", fieldName, got, allowedValues)
	})
}

func lookupField(config interface{}, path string) (reflect.Value, error) {
	current := reflect.ValueOf(config)
	for _, part := range strings.Split(path, ".") {
		for current.Kind() == reflect.Ptr {
			if current.IsNil() {
				return reflect.Value{}, fmt.Errorf("field %s not found: nil %s", path, current.Type())
			}
			current = current.Elem()
		}
		if current.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field %s not found: %s is not a struct", path, current.Kind())
		}
		current = current.FieldByName(part)
		if !current.IsValid() {
			return reflect.Value{}, fmt.Errorf("field %s not found", path)
		}
	}
	return current, nil
}

func numericField(config interface{}, path string) (float64, error) {
	v, err := lookupField(config, path)
	if err != nil {
		return 0, err
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	default:
		return 0, fmt.Errorf("field %s is not numeric", path)
	}
}
