package fieldtype

import (
	"context"
	"strings"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
)

// Shared default behaviour. Variants call these helpers for the operations
// they do not specialise.

func formatText(value string) string {
	return strings.TrimSpace(value)
}

// configurationControls builds one control per declared key, in order.
// options supplies drop down items by key name.
func configurationControls(d Descriptor, options map[string][]editor.ListItem) []editor.Control {
	controls := make([]editor.Control, 0, len(d.Configuration))
	for _, key := range d.Configuration {
		switch key.Control {
		case ControlDropDown:
			controls = append(controls, editor.DropDown{
				ID:    key.Name,
				Label: key.Label,
				Help:  key.Help,
				Items: options[key.Name],
			})
		default:
			controls = append(controls, editor.TextBox{ID: key.Name, Label: key.Label, Help: key.Help})
		}
	}
	return controls
}

// readConfiguration reads positional configuration controls. Controls of the
// wrong kind, and missing trailing controls, leave the value unset.
func readConfiguration(d Descriptor, controls []editor.Control) ConfigurationValues {
	cfg := d.NewConfigurationValues()
	for i, key := range d.Configuration {
		if i >= len(controls) {
			break
		}
		value, ok := controlValue(key.Control, controls[i])
		if !ok {
			continue
		}
		entry := cfg[key.Name]
		entry.Value = value
		cfg[key.Name] = entry
	}
	return cfg
}

// writeConfiguration is the inverse of readConfiguration. It returns a new
// slice; the input controls are not modified.
func writeConfiguration(d Descriptor, controls []editor.Control, cfg ConfigurationValues) []editor.Control {
	if controls == nil {
		return nil
	}
	out := make([]editor.Control, len(controls))
	copy(out, controls)
	if cfg == nil {
		return out
	}

	for i, key := range d.Configuration {
		if i >= len(out) {
			break
		}
		entry, ok := cfg[key.Name]
		if !ok {
			continue
		}
		switch ctl := out[i].(type) {
		case editor.TextBox:
			if key.Control == ControlTextBox {
				out[i] = ctl.WithText(entry.Value)
			}
		case editor.DropDown:
			if key.Control == ControlDropDown {
				out[i] = ctl.WithSelectedValue(entry.Value)
			}
		}
	}
	return out
}

func controlValue(kind ControlKind, control editor.Control) (string, bool) {
	switch ctl := control.(type) {
	case editor.TextBox:
		return ctl.Text, kind == ControlTextBox
	case editor.DropDown:
		return ctl.SelectedValue, kind == ControlDropDown
	}
	return "", false
}

// filterConfig is the default filter binding of an attribute.
func filterConfig(d Descriptor, attr AttributeDescriptor, comparisons domain.ComparisonType) EntityField {
	title := attr.Name
	if title == "" {
		title = domain.SplitCase(attr.Key)
	}
	return EntityField{
		Name:            attr.Key,
		Title:           title,
		Kind:            FieldKindAttribute,
		FieldTypeKey:    d.Key,
		FilterFieldType: d.Key,
		AttributeKey:    attr.Key,
		ComparisonTypes: comparisons,
		Configuration:   attr.Configuration,
	}
}

// Text is the default field type: a free text value stored as entered.
type Text struct{}

// TextKey is the registry key of Text.
const TextKey = "text"

// NewText returns the text field type.
func NewText() Text {
	return Text{}
}

func (Text) Descriptor() Descriptor {
	return Descriptor{
		Key:          TextKey,
		Name:         "Text",
		Description:  "A single line of free text.",
		Capabilities: Capabilities{FilterOperators: true},
	}
}

func (Text) FormatValue(_ context.Context, value string, _ ConfigurationValues, _ bool) string {
	return formatText(value)
}

func (t Text) ConfigurationKeys() []string {
	return t.Descriptor().KeyNames()
}

func (t Text) ConfigurationControls(context.Context) []editor.Control {
	return configurationControls(t.Descriptor(), nil)
}

func (t Text) ConfigurationValues(controls []editor.Control) ConfigurationValues {
	return readConfiguration(t.Descriptor(), controls)
}

func (t Text) SetConfigurationValues(controls []editor.Control, cfg ConfigurationValues) []editor.Control {
	return writeConfiguration(t.Descriptor(), controls, cfg)
}

func (Text) EditControl(_ context.Context, _ ConfigurationValues, id string) editor.Control {
	return editor.TextBox{ID: id}
}

func (Text) GetEditValue(_ context.Context, control editor.Control, _ ConfigurationValues) (string, bool) {
	if tb, ok := control.(editor.TextBox); ok {
		return tb.Text, true
	}
	return "", false
}

func (Text) SetEditValue(_ context.Context, control editor.Control, _ ConfigurationValues, value string) editor.Control {
	if tb, ok := control.(editor.TextBox); ok {
		return tb.WithText(value)
	}
	return control
}

func (t Text) GetFilterConfig(attr AttributeDescriptor) EntityField {
	return filterConfig(t.Descriptor(), attr, domain.StringFilterComparisonTypes)
}
