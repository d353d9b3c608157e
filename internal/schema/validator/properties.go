package validator

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

// ValidateProperties checks the persisted attribute values of an entity.
// Values must be strings in their field type's persisted form. Properties
// without an attribute definition only produce warnings.
func ValidateProperties(entityType string, properties map[string]any, defs []domain.AttributeDefinition, types *fieldtype.Registry) ValidationResult {
	result := ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	declared := make(map[string]struct{})
	for _, def := range defs {
		if !def.AppliesTo(entityType) {
			continue
		}
		declared[strings.ToLower(def.Key)] = struct{}{}

		value, exists := properties[def.Key]
		if !exists || value == nil {
			continue
		}

		text, ok := value.(string)
		if !ok {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   def.Key,
				Message: fmt.Sprintf("field '%s' must be stored as a string", def.Key),
				Value:   value,
			})
			continue
		}

		ft, ok := types.Lookup(def.FieldType)
		if !ok {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   def.Key,
				Message: fmt.Sprintf("field '%s' uses unknown field type %q", def.Key, def.FieldType),
			})
			continue
		}

		if err := validateValue(ft, text); err != nil {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   def.Key,
				Message: err.Error(),
				Value:   text,
			})
		}
	}

	for name, value := range properties {
		if _, ok := declared[strings.ToLower(name)]; !ok {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("field '%s' has no attribute definition", name),
				Value:   value,
			})
		}
	}

	return result
}

// validateValue checks value against the persisted grammar of ft. Empty
// values are always valid.
func validateValue(ft fieldtype.FieldType, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	switch t := ft.(type) {
	case fieldtype.Time:
		if _, ok := fieldtype.ParseTimeOfDay(value); !ok {
			return errors.Errorf("%q is not a time of day", value)
		}
	case fieldtype.BinaryFile:
		if _, err := uuid.Parse(strings.TrimSpace(value)); err != nil {
			return errors.Errorf("%q is not a binary file GUID", value)
		}
	case fieldtype.SelectFromList:
		for _, key := range domain.SplitList(value, ",") {
			if !t.HasKey(key) {
				return errors.Errorf("%q is not an entry of %s", key, t.Descriptor().Name)
			}
		}
	}
	return nil
}
