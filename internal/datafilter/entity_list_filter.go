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

// EntityListOptions configures an EntityListFilter.
type EntityListOptions struct {
	// Property holds the referenced id. Defaults to "id".
	Property string                 `mapstructure:"property"`
	Title    string                 `mapstructure:"title"`
	Items    []fieldtype.ListOption `mapstructure:"items"`
}

// EntityListFilter matches entities whose reference is one of a chosen set
// of ids. The operand is a comma separated id list.
type EntityListFilter struct {
	key        string
	entityType string
	section    string
	property   string
	title      string
	items      []fieldtype.ListOption
}

// NewEntityListFilter creates an entity list filter.
func NewEntityListFilter(key, entityType, section string, opts EntityListOptions) (EntityListFilter, error) {
	if strings.TrimSpace(opts.Title) == "" && strings.TrimSpace(opts.Property) == "" {
		return EntityListFilter{}, errors.Errorf("entity list filter %s: title or property is required", key)
	}
	property := opts.Property
	if property == "" {
		property = "id"
	}
	if section == "" {
		section = DefaultSection
	}
	return EntityListFilter{
		key:        key,
		entityType: entityType,
		section:    section,
		property:   property,
		title:      opts.Title,
		items:      append([]fieldtype.ListOption(nil), opts.Items...),
	}, nil
}

func (f EntityListFilter) Key() string                               { return f.key }
func (f EntityListFilter) AppliesToEntityType() string               { return f.entityType }
func (f EntityListFilter) Section() string                           { return f.section }
func (f EntityListFilter) AttributeValueDefaults() map[string]string { return AttributeValueDefaults() }

func (f EntityListFilter) Title(string) string {
	if f.title != "" {
		return f.title
	}
	return domain.SplitCase(f.property)
}

func (f EntityListFilter) ClientFormatSelection(entityType string) string {
	return ClientFormatSelection(f.Title(entityType))
}

// FormatSelection lists the labels of the selected ids. Ids without a label
// are shown as is.
func (f EntityListFilter) FormatSelection(entityType, selection string) string {
	s, _ := ParseSelection(selection)
	ids := trimmedList(s.Operand)
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = id
		for _, item := range f.items {
			if strings.EqualFold(item.Key, id) {
				labels[i] = item.Label
				break
			}
		}
	}
	return formatDescription(f.Title(entityType), s.Comparison, strings.Join(labels, ", "))
}

func (f EntityListFilter) CreateChildControls(_ string, id string) []editor.Control {
	items := make([]editor.ListItem, len(f.items))
	for i, item := range f.items {
		items[i] = editor.ListItem{Text: item.Label, Value: item.Key}
	}
	return []editor.Control{
		ComparisonControl(editor.ChildID(id, 0), domain.ListFilterComparisonTypes),
		editor.CheckBoxList{ID: editor.ChildID(id, 1), Items: items},
	}
}

func (f EntityListFilter) RenderControls(w io.Writer, _ string, controls []editor.Control, r editor.Renderer) error {
	return RenderControls(w, controls, r)
}

func (f EntityListFilter) GetSelection(_ string, controls []editor.Control) string {
	return getListSelection(controls)
}

func (f EntityListFilter) SetSelection(_ string, controls []editor.Control, selection string) []editor.Control {
	return setListSelection(controls, selection)
}

func (f EntityListFilter) GetExpression(entityType string, svc Service, param predicate.Parameter, selection string) predicate.Expression {
	member := serviceOrDefault(svc).Member(param, entityType, f.property)
	return compileMembership(member, domain.ListFilterComparisonTypes, selection, predicate.BuildMembership)
}

// getListSelection reads an operator drop down followed by a check box list.
func getListSelection(controls []editor.Control) string {
	if len(controls) < 2 {
		return ""
	}
	dd, ok := controls[0].(editor.DropDown)
	if !ok {
		return ""
	}
	cbl, ok := controls[1].(editor.CheckBoxList)
	if !ok {
		return ""
	}
	return selectionFromControl(dd, strings.Join(cbl.SelectedValues(), ","))
}

func setListSelection(controls []editor.Control, selection string) []editor.Control {
	out := copyControls(controls)
	s, ok := ParseSelection(selection)
	if !ok || len(out) < 2 {
		return out
	}
	if dd, ok := out[0].(editor.DropDown); ok {
		out[0] = selectComparison(dd, selection)
	}
	if cbl, ok := out[1].(editor.CheckBoxList); ok {
		ids := trimmedList(s.Operand)
		out[1] = cbl.WithSelected(func(value string) bool {
			for _, id := range ids {
				if strings.EqualFold(id, value) {
					return true
				}
			}
			return false
		})
	}
	return out
}
