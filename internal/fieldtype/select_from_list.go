package fieldtype

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
)

// ListOption is one selectable key and its label.
type ListOption struct {
	Key   string `json:"key" mapstructure:"key"`
	Label string `json:"label" mapstructure:"label"`
}

// ListSource is the ordered backing list of a SelectFromList field type.
type ListSource []ListOption

// DaysOfWeek lists the days of the week keyed by their time.Weekday number.
var DaysOfWeek = ListSource{
	{Key: "0", Label: "Sunday"},
	{Key: "1", Label: "Monday"},
	{Key: "2", Label: "Tuesday"},
	{Key: "3", Label: "Wednesday"},
	{Key: "4", Label: "Thursday"},
	{Key: "5", Label: "Friday"},
	{Key: "6", Label: "Saturday"},
}

// SelectFromList stores a comma separated set of keys chosen from a fixed
// backing list.
type SelectFromList struct {
	key    string
	name   string
	source ListSource
}

// NewSelectFromList returns a list selection field type registered under key.
func NewSelectFromList(key, name string, source ListSource) SelectFromList {
	return SelectFromList{
		key:    key,
		name:   name,
		source: append(ListSource(nil), source...),
	}
}

// ListSource returns a copy of the backing list.
func (s SelectFromList) ListSource() ListSource {
	return append(ListSource(nil), s.source...)
}

func (s SelectFromList) Descriptor() Descriptor {
	return Descriptor{
		Key:          s.key,
		Name:         s.name,
		Description:  "One or more values chosen from a fixed list.",
		Capabilities: Capabilities{ListSelection: true, FilterOperators: true},
	}
}

// FormatValue maps each stored key to its label. The output follows the
// backing list order and unknown keys are dropped.
func (s SelectFromList) FormatValue(_ context.Context, value string, _ ConfigurationValues, _ bool) string {
	keys := domain.SplitList(value, ",")
	labels := make([]string, 0, len(keys))
	for _, option := range s.source {
		for _, key := range keys {
			if sameListKey(option.Key, key) {
				labels = append(labels, option.Label)
				break
			}
		}
	}
	return strings.Join(labels, ",")
}

func (s SelectFromList) ConfigurationKeys() []string {
	return s.Descriptor().KeyNames()
}

func (s SelectFromList) ConfigurationControls(context.Context) []editor.Control {
	return configurationControls(s.Descriptor(), nil)
}

func (s SelectFromList) ConfigurationValues(controls []editor.Control) ConfigurationValues {
	return readConfiguration(s.Descriptor(), controls)
}

func (s SelectFromList) SetConfigurationValues(controls []editor.Control, cfg ConfigurationValues) []editor.Control {
	return writeConfiguration(s.Descriptor(), controls, cfg)
}

func (s SelectFromList) EditControl(_ context.Context, _ ConfigurationValues, id string) editor.Control {
	if len(s.source) == 0 {
		return nil
	}
	return editor.CheckBoxList{ID: id, Horizontal: true, Items: s.listItems()}
}

func (s SelectFromList) GetEditValue(_ context.Context, control editor.Control, _ ConfigurationValues) (string, bool) {
	cbl, ok := control.(editor.CheckBoxList)
	if !ok {
		return "", false
	}
	return strings.Join(cbl.SelectedValues(), ","), true
}

// SetEditValue checks the items whose key is in value. Keys that match no
// item are ignored.
func (s SelectFromList) SetEditValue(_ context.Context, control editor.Control, _ ConfigurationValues, value string) editor.Control {
	cbl, ok := control.(editor.CheckBoxList)
	if !ok {
		return control
	}
	keys := strings.Split(value, ",")
	return cbl.WithSelected(func(itemValue string) bool {
		for _, key := range keys {
			if sameListKey(key, itemValue) {
				return true
			}
		}
		return false
	})
}

func (s SelectFromList) GetFilterConfig(attr AttributeDescriptor) EntityField {
	field := filterConfig(s.Descriptor(), attr, domain.ListFilterComparisonTypes)
	field.ListItems = s.listItems()
	return field
}

func (s SelectFromList) listItems() []editor.ListItem {
	items := make([]editor.ListItem, len(s.source))
	for i, option := range s.source {
		items[i] = editor.ListItem{Text: option.Label, Value: option.Key}
	}
	return items
}

// HasKey reports whether key names an entry of the backing list.
func (s SelectFromList) HasKey(key string) bool {
	for _, option := range s.source {
		if sameListKey(option.Key, key) {
			return true
		}
	}
	return false
}

// sameListKey compares keys as GUIDs when both parse as one, otherwise
// case-insensitively.
func sameListKey(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	ga, errA := uuid.Parse(a)
	gb, errB := uuid.Parse(b)
	if errA == nil && errB == nil {
		return ga == gb
	}
	return strings.EqualFold(a, b)
}
