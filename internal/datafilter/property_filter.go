package datafilter

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
	"github.com/rpattn/dataview/internal/predicate"
)

// PropertyOptions configures a PropertyFilter.
type PropertyOptions struct {
	// Property is the entity field compared against the operand.
	Property string `mapstructure:"property"`
	// Title overrides the resolved title.
	Title string `mapstructure:"title"`
	// Comparisons lists the allowed operators by name or code. Empty means
	// the string comparison set.
	Comparisons []string `mapstructure:"comparisons"`
}

// PropertyFilter compares one entity field with a single text operand.
type PropertyFilter struct {
	key         string
	entityType  string
	section     string
	property    string
	title       string
	comparisons domain.ComparisonType
	titles      TitleResolver
}

// NewPropertyFilter creates a property filter. titles may be nil.
func NewPropertyFilter(key, entityType, section string, opts PropertyOptions, titles TitleResolver) (PropertyFilter, error) {
	if strings.TrimSpace(opts.Property) == "" {
		return PropertyFilter{}, errors.Errorf("property filter %s: property is required", key)
	}
	comparisons, err := parseComparisonSet(opts.Comparisons, domain.StringFilterComparisonTypes)
	if err != nil {
		return PropertyFilter{}, errors.Wrapf(err, "property filter %s", key)
	}
	if section == "" {
		section = DefaultSection
	}
	return PropertyFilter{
		key:         key,
		entityType:  entityType,
		section:     section,
		property:    opts.Property,
		title:       opts.Title,
		comparisons: comparisons,
		titles:      titles,
	}, nil
}

func parseComparisonSet(names []string, def domain.ComparisonType) (domain.ComparisonType, error) {
	if len(names) == 0 {
		return def, nil
	}
	var set domain.ComparisonType
	for _, name := range names {
		ct, ok := domain.ParseComparisonType(name)
		if !ok {
			return 0, errors.Errorf("unknown comparison %q", name)
		}
		set |= ct
	}
	return set, nil
}

func (f PropertyFilter) Key() string                               { return f.key }
func (f PropertyFilter) AppliesToEntityType() string               { return f.entityType }
func (f PropertyFilter) Section() string                           { return f.section }
func (f PropertyFilter) AttributeValueDefaults() map[string]string { return AttributeValueDefaults() }

// Comparisons returns the allowed operator set.
func (f PropertyFilter) Comparisons() domain.ComparisonType { return f.comparisons }

// Title prefers the configured title, then the resolver, then the split
// property name.
func (f PropertyFilter) Title(entityType string) string {
	if f.title != "" {
		return f.title
	}
	if f.titles != nil {
		if title := f.titles.FieldTitle(entityType, f.property); title != "" {
			return title
		}
	}
	return domain.SplitCase(f.property)
}

func (f PropertyFilter) ClientFormatSelection(entityType string) string {
	return ClientFormatSelection(f.Title(entityType))
}

func (f PropertyFilter) FormatSelection(entityType, selection string) string {
	return FormatSelection(f.Title(entityType), selection)
}

func (f PropertyFilter) CreateChildControls(_ string, id string) []editor.Control {
	return CreateChildControls(id, f.comparisons)
}

func (f PropertyFilter) RenderControls(w io.Writer, _ string, controls []editor.Control, r editor.Renderer) error {
	return RenderControls(w, controls, r)
}

func (f PropertyFilter) GetSelection(_ string, controls []editor.Control) string {
	return GetSelection(controls)
}

func (f PropertyFilter) SetSelection(_ string, controls []editor.Control, selection string) []editor.Control {
	return SetSelection(controls, selection)
}

func (f PropertyFilter) GetExpression(entityType string, svc Service, param predicate.Parameter, selection string) predicate.Expression {
	member := serviceOrDefault(svc).Member(param, entityType, f.property)
	return compile(member, f.comparisons, selection, nil)
}
