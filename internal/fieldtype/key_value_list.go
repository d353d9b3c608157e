package fieldtype

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
)

// DefinedValueSource supplies defined types and their values as constrained
// value sources.
type DefinedValueSource interface {
	ListDefinedTypes(ctx context.Context) ([]domain.DefinedType, error)
	ListByDefinedType(ctx context.Context, definedTypeID int) ([]domain.DefinedValue, error)
}

// Configuration keys of KeyValueList.
const (
	KeyPromptKey    = "keyprompt"
	ValuePromptKey  = "valueprompt"
	DefinedTypeKey  = "definedtype"
	CustomValuesKey = "customvalues"
)

// KeyValueListKey is the registry key of KeyValueList.
const KeyValueListKey = "keyvaluelist"

var keyValueListConfiguration = []ConfigurationKey{
	{Name: KeyPromptKey, Label: "Key Prompt", Help: "The text to display as a prompt in the key textbox.", Control: ControlTextBox},
	{Name: ValuePromptKey, Label: "Label Prompt", Help: "The text to display as a prompt in the label textbox.", Control: ControlTextBox},
	{Name: DefinedTypeKey, Label: "Defined Type", Help: "Optional Defined Type to select values from, otherwise values will be free-form text fields", Control: ControlDropDown},
	{Name: CustomValuesKey, Label: "Custom Values", Help: "Optional list of options to use for the values.  Format is either 'value1,value2,value3,...', or 'value1:text1,value2:text2,value3:text3,...'.", Control: ControlTextBox},
}

// KeyValueList stores an ordered list of key/value pairs as "key:value|key:value".
// Keys and values escape ':', '|' and '%' so any text round trips.
type KeyValueList struct {
	definedValues DefinedValueSource
}

// NewKeyValueList returns the key/value list field type. definedValues may be
// nil, in which case the definedtype qualifier has no effect.
func NewKeyValueList(definedValues DefinedValueSource) KeyValueList {
	return KeyValueList{definedValues: definedValues}
}

func (KeyValueList) Descriptor() Descriptor {
	return Descriptor{
		Key:           KeyValueListKey,
		Name:          "Key Value List",
		Description:   "An ordered list of key and value pairs.",
		Configuration: keyValueListConfiguration,
	}
}

var countPrinter = message.NewPrinter(language.English)

// FormatValue reports the number of pairs. The pairs themselves are never
// rendered.
func (KeyValueList) FormatValue(_ context.Context, value string, _ ConfigurationValues, _ bool) string {
	count := len(domain.SplitList(value, "|"))
	if count == 1 {
		return "1 Key Value Pair"
	}
	return countPrinter.Sprintf("%d Key Value Pairs", count)
}

func (k KeyValueList) ConfigurationKeys() []string {
	return k.Descriptor().KeyNames()
}

func (k KeyValueList) ConfigurationControls(ctx context.Context) []editor.Control {
	options := map[string][]editor.ListItem{
		DefinedTypeKey: {{Text: "", Value: ""}},
	}
	if k.definedValues != nil {
		types, err := k.definedValues.ListDefinedTypes(ctx)
		if err != nil {
			logrus.WithError(err).Warn("failed to list defined types")
		}
		for _, dt := range types {
			options[DefinedTypeKey] = append(options[DefinedTypeKey], editor.ListItem{
				Text:  dt.Name,
				Value: strconv.Itoa(dt.ID),
			})
		}
	}
	return configurationControls(k.Descriptor(), options)
}

func (k KeyValueList) ConfigurationValues(controls []editor.Control) ConfigurationValues {
	return readConfiguration(k.Descriptor(), controls)
}

func (k KeyValueList) SetConfigurationValues(controls []editor.Control, cfg ConfigurationValues) []editor.Control {
	return writeConfiguration(k.Descriptor(), controls, cfg)
}

// EditControl returns a pair list. Values are constrained to the configured
// defined type, or else to the custom values, when either is set.
func (k KeyValueList) EditControl(ctx context.Context, cfg ConfigurationValues, id string) editor.Control {
	d := k.Descriptor()
	return editor.KeyValueList{
		ID:           id,
		KeyPrompt:    d.ConfigValue(cfg, KeyPromptKey),
		ValuePrompt:  d.ConfigValue(cfg, ValuePromptKey),
		ValueOptions: k.valueOptions(ctx, d, cfg),
	}
}

func (k KeyValueList) valueOptions(ctx context.Context, d Descriptor, cfg ConfigurationValues) []editor.ListItem {
	if k.definedValues != nil {
		if id, err := strconv.Atoi(d.ConfigValue(cfg, DefinedTypeKey)); err == nil {
			values, err := k.definedValues.ListByDefinedType(ctx, id)
			if err != nil {
				logrus.WithError(err).WithField("definedTypeId", id).Warn("failed to list defined values")
			}
			if len(values) > 0 {
				items := make([]editor.ListItem, len(values))
				for i, dv := range values {
					items[i] = editor.ListItem{Text: dv.Value, Value: dv.GUID.String()}
				}
				return items
			}
		}
	}
	return ParseCustomValues(d.ConfigValue(cfg, CustomValuesKey))
}

// ParseCustomValues parses "v1,v2" or "v1:t1,v2:t2" into list items.
func ParseCustomValues(custom string) []editor.ListItem {
	entries := domain.SplitList(custom, ",")
	if len(entries) == 0 {
		return nil
	}
	items := make([]editor.ListItem, 0, len(entries))
	for _, entry := range entries {
		value, text, found := strings.Cut(entry, ":")
		value = strings.TrimSpace(value)
		if !found {
			text = value
		}
		items = append(items, editor.ListItem{Text: strings.TrimSpace(text), Value: value})
	}
	return items
}

func (KeyValueList) GetEditValue(_ context.Context, control editor.Control, _ ConfigurationValues) (string, bool) {
	kvl, ok := control.(editor.KeyValueList)
	if !ok {
		return "", false
	}
	return EncodePairs(kvl.Pairs), true
}

func (KeyValueList) SetEditValue(_ context.Context, control editor.Control, _ ConfigurationValues, value string) editor.Control {
	kvl, ok := control.(editor.KeyValueList)
	if !ok {
		return control
	}
	return kvl.WithPairs(DecodePairs(value))
}

func (k KeyValueList) GetFilterConfig(attr AttributeDescriptor) EntityField {
	return filterConfig(k.Descriptor(), attr, 0)
}

var pairEscaper = strings.NewReplacer("%", "%25", ":", "%3A", "|", "%7C")

// EncodePairs persists pairs. Rows with neither key nor value are dropped.
func EncodePairs(pairs []editor.KeyValuePair) string {
	encoded := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Key == "" && pair.Value == "" {
			continue
		}
		encoded = append(encoded, pairEscaper.Replace(pair.Key)+":"+pairEscaper.Replace(pair.Value))
	}
	return strings.Join(encoded, "|")
}

// DecodePairs parses a persisted pair list. A pair without ':' is a key with
// an empty value.
func DecodePairs(value string) []editor.KeyValuePair {
	entries := domain.SplitList(value, "|")
	if len(entries) == 0 {
		return nil
	}
	pairs := make([]editor.KeyValuePair, 0, len(entries))
	for _, entry := range entries {
		key, val, _ := strings.Cut(entry, ":")
		pairs = append(pairs, editor.KeyValuePair{Key: unescapePair(key), Value: unescapePair(val)})
	}
	return pairs
}

func unescapePair(value string) string {
	out, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return out
}
