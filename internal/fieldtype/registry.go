package fieldtype

import (
	"slices"
	"sort"

	"github.com/pkg/errors"
)

// Registry maps field type keys to field types. It is built once and is safe
// for concurrent reads.
type Registry struct {
	types map[string]FieldType
}

// NewRegistry validates and registers types. It fails on an empty or
// duplicate key, on configuration keys that disagree with the descriptor, and
// on a filter capability without any legal comparison.
func NewRegistry(types ...FieldType) (*Registry, error) {
	r := &Registry{types: make(map[string]FieldType, len(types))}
	for _, ft := range types {
		if err := r.register(ft); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(ft FieldType) error {
	if ft == nil {
		return errors.New("field type is nil")
	}
	d := ft.Descriptor()
	if d.Key == "" {
		return errors.Errorf("field type %T has an empty key", ft)
	}
	if _, ok := r.types[d.Key]; ok {
		return errors.Errorf("field type already registered: %s", d.Key)
	}

	keys := ft.ConfigurationKeys()
	declared := d.KeyNames()
	if !slices.Equal(keys, declared) {
		return errors.Errorf("field type %s: configuration keys %v do not match descriptor %v", d.Key, keys, declared)
	}

	if d.Capabilities.FilterOperators {
		if ft.GetFilterConfig(AttributeDescriptor{Key: d.Key}).ComparisonTypes == 0 {
			return errors.Errorf("field type %s declares filter operators but allows no comparison", d.Key)
		}
	}

	r.types[d.Key] = ft
	return nil
}

// Lookup returns the field type registered under key.
func (r *Registry) Lookup(key string) (FieldType, bool) {
	ft, ok := r.types[key]
	return ft, ok
}

// MustLookup is like Lookup but panics on an unknown key.
func (r *Registry) MustLookup(key string) FieldType {
	ft, ok := r.types[key]
	if !ok {
		panic("fieldtype: unknown field type " + key)
	}
	return ft
}

// Descriptors returns the descriptors of all registered types ordered by key.
func (r *Registry) Descriptors() []Descriptor {
	descriptors := make([]Descriptor, 0, len(r.types))
	for _, ft := range r.types {
		descriptors = append(descriptors, ft.Descriptor())
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Key < descriptors[j].Key
	})
	return descriptors
}

// Dependencies are the collaborators of the standard field types.
type Dependencies struct {
	BinaryFiles   BinaryFileResolver
	DefinedValues DefinedValueSource
	ListSources   map[string]ListSource
}

// DayOfWeekKey is the registry key of the standard day of week list.
const DayOfWeekKey = "dayofweek"

// Defaults returns the standard field types. The binary file type is only
// included when a resolver is supplied. Each entry of ListSources becomes a
// SelectFromList keyed by its map key.
func Defaults(deps Dependencies) []FieldType {
	types := []FieldType{
		NewText(),
		NewTime(),
		NewKeyValueList(deps.DefinedValues),
		NewSelectFromList(DayOfWeekKey, "Day of the Week", DaysOfWeek),
	}
	if deps.BinaryFiles != nil {
		types = append(types, NewBinaryFile(deps.BinaryFiles))
	}

	keys := make([]string, 0, len(deps.ListSources))
	for key := range deps.ListSources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		types = append(types, NewSelectFromList(key, key, deps.ListSources[key]))
	}
	return types
}
