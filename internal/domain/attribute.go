package domain

import "strings"

// AttributeDefinition declares one typed attribute that records of an entity
// type may carry. Configuration holds the field type's qualifier values keyed
// by configuration key name.
type AttributeDefinition struct {
	Key           string            `json:"key" mapstructure:"key"`
	Name          string            `json:"name" mapstructure:"name"`
	EntityType    string            `json:"entityType" mapstructure:"entityType"`
	FieldType     string            `json:"fieldType" mapstructure:"fieldType"`
	Description   string            `json:"description,omitempty" mapstructure:"description"`
	DefaultValue  string            `json:"defaultValue,omitempty" mapstructure:"defaultValue"`
	Configuration map[string]string `json:"configuration,omitempty" mapstructure:"configuration"`
}

// AppliesTo reports whether the attribute is declared on entityType. An
// attribute without an entity type applies to every type.
func (a AttributeDefinition) AppliesTo(entityType string) bool {
	return a.EntityType == "" || strings.EqualFold(a.EntityType, entityType)
}

// copyConfiguration creates a copy of the configuration map
func copyConfiguration(cfg map[string]string) map[string]string {
	if cfg == nil {
		return nil
	}
	out := make(map[string]string, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}

// WithConfiguration returns a copy of the definition with cfg replacing the
// qualifier values.
func (a AttributeDefinition) WithConfiguration(cfg map[string]string) AttributeDefinition {
	a.Configuration = copyConfiguration(cfg)
	return a
}
