// Package fieldtype defines how typed attribute values are persisted,
// formatted, edited and bridged into data filters. Field types are stateless
// values registered once at startup; all per-use state travels in the
// persisted value, the configuration values and the editor controls passed in.
package fieldtype

import (
	"context"
	"strings"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
)

// FieldType is implemented by every attribute value encoding.
//
// Operations that may consult a resolution capability take a context; the
// rest are pure. None of them return errors for malformed persisted values:
// those degrade to an empty result.
type FieldType interface {
	Descriptor() Descriptor

	// FormatValue renders a persisted value for display. Condensed output is
	// used in grid cells.
	FormatValue(ctx context.Context, value string, cfg ConfigurationValues, condensed bool) string

	ConfigurationKeys() []string
	ConfigurationControls(ctx context.Context) []editor.Control
	ConfigurationValues(controls []editor.Control) ConfigurationValues
	SetConfigurationValues(controls []editor.Control, cfg ConfigurationValues) []editor.Control

	// EditControl returns nil when there is nothing to select.
	EditControl(ctx context.Context, cfg ConfigurationValues, id string) editor.Control
	// GetEditValue reports false when control holds no value this field type
	// understands.
	GetEditValue(ctx context.Context, control editor.Control, cfg ConfigurationValues) (string, bool)
	SetEditValue(ctx context.Context, control editor.Control, cfg ConfigurationValues, value string) editor.Control

	GetFilterConfig(attr AttributeDescriptor) EntityField
}

// OperandNormalizer is implemented by field types whose filter operands need
// converting to the persisted grammar before comparison.
type OperandNormalizer interface {
	NormalizeOperand(operand string) string
}

// ControlKind is the editor control a configuration key is edited with.
type ControlKind string

const (
	ControlTextBox  ControlKind = "textbox"
	ControlDropDown ControlKind = "dropdown"
)

// ConfigurationKey declares one qualifier of a field type. The order of keys
// in a Descriptor is the order of the configuration controls.
type ConfigurationKey struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Help    string      `json:"help,omitempty"`
	Default string      `json:"default,omitempty"`
	Control ControlKind `json:"control"`
}

// Capabilities flags optional behaviour of a field type.
type Capabilities struct {
	ListSelection   bool `json:"listSelection"`
	FilterOperators bool `json:"filterOperators"`
}

// Descriptor identifies a field type and its configuration schema.
type Descriptor struct {
	Key           string             `json:"key"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Configuration []ConfigurationKey `json:"configuration"`
	Capabilities  Capabilities       `json:"capabilities"`
}

// KeyNames returns the configuration key names in order.
func (d Descriptor) KeyNames() []string {
	names := make([]string, len(d.Configuration))
	for i, key := range d.Configuration {
		names[i] = key.Name
	}
	return names
}

// configurationKey returns the declaration of name.
func (d Descriptor) configurationKey(name string) (ConfigurationKey, bool) {
	for _, key := range d.Configuration {
		if key.Name == name {
			return key, true
		}
	}
	return ConfigurationKey{}, false
}

// NewConfigurationValues returns every declared key with its default and no
// value set.
func (d Descriptor) NewConfigurationValues() ConfigurationValues {
	cfg := make(ConfigurationValues, len(d.Configuration))
	for _, key := range d.Configuration {
		cfg[key.Name] = ConfigurationValue{
			Name:        key.Label,
			Description: key.Help,
			Default:     key.Default,
		}
	}
	return cfg
}

// Configure builds configuration values from stored qualifier values. Stored
// names match declared keys case-insensitively; keys the field type does not
// declare are ignored.
func (d Descriptor) Configure(stored map[string]string) ConfigurationValues {
	cfg := d.NewConfigurationValues()
	for name, value := range stored {
		for _, key := range d.Configuration {
			if strings.EqualFold(key.Name, name) {
				entry := cfg[key.Name]
				entry.Value = value
				cfg[key.Name] = entry
				break
			}
		}
	}
	return cfg
}

// ConfigValue looks up key in cfg, falling back to the declared default when
// the key is missing or has no value.
func (d Descriptor) ConfigValue(cfg ConfigurationValues, key string) string {
	if entry, ok := cfg[key]; ok {
		if entry.Value != "" {
			return entry.Value
		}
		if entry.Default != "" {
			return entry.Default
		}
	}
	if declared, ok := d.configurationKey(key); ok {
		return declared.Default
	}
	return ""
}

// ConfigurationValue is one qualifier value with its label and help text.
type ConfigurationValue struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value"`
	Default     string `json:"default,omitempty"`
}

// ConfigurationValues maps configuration key names to values.
type ConfigurationValues map[string]ConfigurationValue

// Values flattens the configuration to stored qualifier values.
func (c ConfigurationValues) Values() map[string]string {
	out := make(map[string]string, len(c))
	for name, entry := range c {
		out[name] = entry.Value
	}
	return out
}

// AttributeDescriptor describes the attribute a filter binding is derived
// from.
type AttributeDescriptor struct {
	Key           string              `json:"key"`
	Name          string              `json:"name"`
	EntityType    string              `json:"entityType,omitempty"`
	Configuration ConfigurationValues `json:"configuration,omitempty"`
}

// DescribeAttribute binds an attribute definition to ft's configuration
// schema.
func DescribeAttribute(def domain.AttributeDefinition, ft FieldType) AttributeDescriptor {
	return AttributeDescriptor{
		Key:           def.Key,
		Name:          def.Name,
		EntityType:    def.EntityType,
		Configuration: ft.Descriptor().Configure(def.Configuration),
	}
}

// FieldKind tells whether an EntityField is a column of the record or an
// attribute held in its properties.
type FieldKind string

const (
	FieldKindProperty  FieldKind = "property"
	FieldKindAttribute FieldKind = "attribute"
)

// EntityField is the filter binding of an attribute: which comparisons are
// legal for it and which field type edits filter operands.
type EntityField struct {
	Name            string                `json:"name"`
	Title           string                `json:"title"`
	Kind            FieldKind             `json:"kind"`
	FieldTypeKey    string                `json:"fieldTypeKey"`
	FilterFieldType string                `json:"filterFieldType"`
	AttributeKey    string                `json:"attributeKey,omitempty"`
	ComparisonTypes domain.ComparisonType `json:"comparisonTypes"`
	ListItems       []editor.ListItem     `json:"listItems,omitempty"`
	Configuration   ConfigurationValues   `json:"configuration,omitempty"`
}
