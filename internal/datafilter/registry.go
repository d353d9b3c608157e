package datafilter

import (
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
)

// Registry maps component keys to filter components. It is built once and is
// safe for concurrent reads.
type Registry struct {
	components map[string]Component
}

// NewRegistry registers components, failing on a nil component or an empty or
// duplicate key.
func NewRegistry(components ...Component) (*Registry, error) {
	r := &Registry{components: make(map[string]Component, len(components))}
	for _, c := range components {
		if c == nil {
			return nil, errors.New("filter component is nil")
		}
		key := c.Key()
		if key == "" {
			return nil, errors.Errorf("filter component %T has an empty key", c)
		}
		if _, ok := r.components[key]; ok {
			return nil, errors.Errorf("filter component already registered: %s", key)
		}
		r.components[key] = c
	}
	return r, nil
}

// Lookup returns the component registered under key.
func (r *Registry) Lookup(key string) (Component, bool) {
	c, ok := r.components[key]
	return c, ok
}

// Components returns every component ordered by key.
func (r *Registry) Components() []Component {
	out := make([]Component, 0, len(r.components))
	for _, c := range r.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// ForEntityType returns the components usable on entityType, global ones
// included, ordered by section, title and key.
func (r *Registry) ForEntityType(entityType string) []Component {
	out := make([]Component, 0, len(r.components))
	for _, c := range r.components {
		applies := c.AppliesToEntityType()
		if applies == "" || strings.EqualFold(applies, entityType) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Section() != b.Section() {
			return a.Section() < b.Section()
		}
		ta, tb := a.Title(entityType), b.Title(entityType)
		if ta != tb {
			return ta < tb
		}
		return a.Key() < b.Key()
	})
	return out
}

// Filter kinds accepted in definitions.
const (
	KindProperty   = "property"
	KindEntityList = "entitylist"
	KindAttribute  = "attribute"
)

// Definition declares one filter component in configuration.
type Definition struct {
	Key        string         `mapstructure:"key"`
	Kind       string         `mapstructure:"kind"`
	EntityType string         `mapstructure:"entityType"`
	Section    string         `mapstructure:"section"`
	Options    map[string]any `mapstructure:"options"`
}

// AttributeOptions selects the attribute an attribute filter is bound to.
type AttributeOptions struct {
	Attribute string `mapstructure:"attribute"`
}

// Dependencies are the collaborators FromDefinitions binds components to.
type Dependencies struct {
	FieldTypes *fieldtype.Registry
	Attributes []domain.AttributeDefinition
	Titles     TitleResolver
}

// FromDefinitions builds the components declared in defs.
func FromDefinitions(defs []Definition, deps Dependencies) ([]Component, error) {
	components := make([]Component, 0, len(defs))
	for _, def := range defs {
		c, err := fromDefinition(def, deps)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %s", def.Key)
		}
		components = append(components, c)
	}
	return components, nil
}

func fromDefinition(def Definition, deps Dependencies) (Component, error) {
	switch strings.ToLower(def.Kind) {
	case KindProperty:
		var opts PropertyOptions
		if err := decodeOptions(def.Options, &opts); err != nil {
			return nil, err
		}
		return NewPropertyFilter(def.Key, def.EntityType, def.Section, opts, deps.Titles)
	case KindEntityList:
		var opts EntityListOptions
		if err := decodeOptions(def.Options, &opts); err != nil {
			return nil, err
		}
		return NewEntityListFilter(def.Key, def.EntityType, def.Section, opts)
	case KindAttribute:
		var opts AttributeOptions
		if err := decodeOptions(def.Options, &opts); err != nil {
			return nil, err
		}
		if deps.FieldTypes == nil {
			return nil, errors.New("attribute filters need a field type registry")
		}
		for _, attr := range deps.Attributes {
			if strings.EqualFold(attr.Key, opts.Attribute) && attr.AppliesTo(def.EntityType) {
				return NewAttributeFilter(def.Key, def.Section, attr, deps.FieldTypes)
			}
		}
		return nil, errors.Errorf("unknown attribute %q", opts.Attribute)
	}
	return nil, errors.Errorf("unknown filter kind %q", def.Kind)
}

func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create options decoder")
	}
	if err := decoder.Decode(options); err != nil {
		return errors.Wrap(err, "invalid filter options")
	}
	return nil
}
