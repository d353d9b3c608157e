package datafilter

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
	"github.com/rpattn/dataview/internal/fieldtype"
	"github.com/rpattn/dataview/internal/predicate"
)

// AttributeKeyPrefix prefixes the keys of generated attribute filters.
const AttributeKeyPrefix = "attribute."

// AttributeFilter filters on an attribute through its field type's filter
// binding. Operators outside the binding's comparison set compile to True.
type AttributeFilter struct {
	key       string
	section   string
	attribute domain.AttributeDefinition
	fieldType fieldtype.FieldType
	field     fieldtype.EntityField
}

// NewAttributeFilter binds def to its field type in types.
func NewAttributeFilter(key, section string, def domain.AttributeDefinition, types *fieldtype.Registry) (AttributeFilter, error) {
	ft, ok := types.Lookup(def.FieldType)
	if !ok {
		return AttributeFilter{}, errors.Errorf("attribute %s: unknown field type %q", def.Key, def.FieldType)
	}
	if !ft.Descriptor().Capabilities.FilterOperators {
		return AttributeFilter{}, errors.Errorf("attribute %s: field type %s does not support filtering", def.Key, def.FieldType)
	}
	if key == "" {
		key = AttributeKeyPrefix + def.Key
	}
	if section == "" {
		section = DefaultSection
	}
	return AttributeFilter{
		key:       key,
		section:   section,
		attribute: def,
		fieldType: ft,
		field:     ft.GetFilterConfig(fieldtype.DescribeAttribute(def, ft)),
	}, nil
}

// AttributeFilters builds one filter per filterable attribute. Attributes
// whose field type cannot filter are skipped. Keys are AttributeKeyPrefix
// plus the attribute key, qualified by the lower-cased entity type when the
// same attribute key is declared on several entity types.
func AttributeFilters(defs []domain.AttributeDefinition, types *fieldtype.Registry) ([]Component, error) {
	declared := make(map[string]int, len(defs))
	for _, def := range defs {
		declared[strings.ToLower(def.Key)]++
	}

	components := make([]Component, 0, len(defs))
	for _, def := range defs {
		ft, ok := types.Lookup(def.FieldType)
		if !ok {
			return nil, errors.Errorf("attribute %s: unknown field type %q", def.Key, def.FieldType)
		}
		if !ft.Descriptor().Capabilities.FilterOperators {
			continue
		}
		key := ""
		if declared[strings.ToLower(def.Key)] > 1 && def.EntityType != "" {
			key = AttributeKeyPrefix + strings.ToLower(def.EntityType) + "." + def.Key
		}
		f, err := NewAttributeFilter(key, "", def, types)
		if err != nil {
			return nil, err
		}
		components = append(components, f)
	}
	return components, nil
}

func (f AttributeFilter) Key() string                               { return f.key }
func (f AttributeFilter) AppliesToEntityType() string               { return f.attribute.EntityType }
func (f AttributeFilter) Section() string                           { return f.section }
func (f AttributeFilter) AttributeValueDefaults() map[string]string { return AttributeValueDefaults() }

// Field returns the filter binding derived from the field type.
func (f AttributeFilter) Field() fieldtype.EntityField { return f.field }

func (f AttributeFilter) Title(string) string {
	return f.field.Title
}

func (f AttributeFilter) ClientFormatSelection(entityType string) string {
	return ClientFormatSelection(f.Title(entityType))
}

// FormatSelection describes the selection. List attributes show the labels
// of the selected keys.
func (f AttributeFilter) FormatSelection(entityType, selection string) string {
	if !f.listSelection() {
		return FormatSelection(f.Title(entityType), selection)
	}
	s, _ := ParseSelection(selection)
	keys := trimmedList(s.Operand)
	labels := make([]string, 0, len(keys))
	for _, item := range f.field.ListItems {
		for _, key := range keys {
			if strings.EqualFold(item.Value, key) {
				labels = append(labels, item.Text)
				break
			}
		}
	}
	return formatDescription(f.Title(entityType), s.Comparison, strings.Join(labels, ", "))
}

func (f AttributeFilter) CreateChildControls(_ string, id string) []editor.Control {
	compare := ComparisonControl(editor.ChildID(id, 0), f.field.ComparisonTypes)
	if f.listSelection() {
		items := make([]editor.ListItem, len(f.field.ListItems))
		copy(items, f.field.ListItems)
		return []editor.Control{compare, editor.CheckBoxList{ID: editor.ChildID(id, 1), Items: items}}
	}
	return []editor.Control{compare, editor.TextBox{ID: editor.ChildID(id, 1), CSSClass: editor.ControlClass}}
}

func (f AttributeFilter) RenderControls(w io.Writer, _ string, controls []editor.Control, r editor.Renderer) error {
	return RenderControls(w, controls, r)
}

func (f AttributeFilter) GetSelection(_ string, controls []editor.Control) string {
	if f.listSelection() {
		return getListSelection(controls)
	}
	return GetSelection(controls)
}

func (f AttributeFilter) SetSelection(_ string, controls []editor.Control, selection string) []editor.Control {
	if f.listSelection() {
		return setListSelection(controls, selection)
	}
	return SetSelection(controls, selection)
}

func (f AttributeFilter) GetExpression(entityType string, svc Service, param predicate.Parameter, selection string) predicate.Expression {
	member := serviceOrDefault(svc).Member(param, entityType, f.attribute.Key)
	if f.listSelection() {
		return compileMembership(member, f.field.ComparisonTypes, selection, predicate.BuildKeySetMembership)
	}
	var normalize func(string) string
	if n, ok := f.fieldType.(fieldtype.OperandNormalizer); ok {
		normalize = n.NormalizeOperand
	}
	return compile(member, f.field.ComparisonTypes, selection, normalize)
}

func (f AttributeFilter) listSelection() bool {
	return f.fieldType.Descriptor().Capabilities.ListSelection
}
