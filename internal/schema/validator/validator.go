package validator

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
)

// ValidateAttributes ensures attribute definitions can be bound to the
// registered field types: keys are present and unique per entity type, the
// field type exists, every configuration key is declared by it and any
// default value is a valid persisted value.
func ValidateAttributes(defs []domain.AttributeDefinition, types *fieldtype.Registry) error {
	seen := make(map[string]struct{}, len(defs))

	for _, def := range defs {
		key := strings.TrimSpace(def.Key)
		if key == "" {
			return errors.Errorf("attribute %q has no key", def.Name)
		}
		if key != def.Key {
			return errors.Errorf("attribute key %q has surrounding whitespace", def.Key)
		}

		scoped := strings.ToLower(def.EntityType) + "/" + strings.ToLower(key)
		if _, dup := seen[scoped]; dup {
			return errors.Errorf("attribute %s is declared twice for entity type %q", key, def.EntityType)
		}
		seen[scoped] = struct{}{}

		ft, ok := types.Lookup(def.FieldType)
		if !ok {
			return errors.Errorf("attribute %s uses unknown field type %q", key, def.FieldType)
		}

		descriptor := ft.Descriptor()
		for name := range def.Configuration {
			if !declares(descriptor, name) {
				return errors.Errorf("attribute %s sets configuration %q which field type %s does not declare", key, name, descriptor.Key)
			}
		}

		if def.DefaultValue != "" {
			if err := validateValue(ft, def.DefaultValue); err != nil {
				return errors.Wrapf(err, "attribute %s default value", key)
			}
		}
	}

	return nil
}

func declares(d fieldtype.Descriptor, name string) bool {
	for _, key := range d.Configuration {
		if strings.EqualFold(key.Name, name) {
			return true
		}
	}
	return false
}
