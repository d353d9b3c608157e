package datafilter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromDefinitionsBuildsRegistry(t *testing.T) {
	defs := []Definition{
		{Key: "person.lastname", Kind: "property", EntityType: "Person", Options: map[string]any{"property": "LastName"}},
		{Key: "any.created", Kind: "Property", Section: "Dates", Options: map[string]any{
			"property":    "CreatedAt",
			"title":       "Created",
			"comparisons": []any{"GreaterThan", "LessThan", "256"},
		}},
		{Key: "person.campus", Kind: "entitylist", EntityType: "Person", Options: map[string]any{
			"property": "CampusId",
			"title":    "Campus",
			"items":    []any{map[string]any{"key": "c1", "label": "Main"}},
		}},
		{Key: "group.time", Kind: "attribute", EntityType: "Group", Options: map[string]any{"attribute": "servicetime"}},
	}

	components, err := FromDefinitions(defs, Dependencies{FieldTypes: newFieldTypes(t), Attributes: testAttributes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, err := NewRegistry(components...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, ok := r.Lookup("any.created")
	if !ok {
		t.Fatalf("expected any.created to be registered")
	}
	if got := created.(PropertyFilter).Comparisons().Members(); len(got) != 3 {
		t.Fatalf("unexpected comparisons %v", got)
	}

	var keys []string
	for _, c := range r.ForEntityType("person") {
		keys = append(keys, c.Key())
	}
	want := []string{"person.campus", "person.lastname", "any.created"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("unexpected person filters (-want +got):\n%s", diff)
	}

	keys = nil
	for _, c := range r.Components() {
		keys = append(keys, c.Key())
	}
	if got := strings.Join(keys, ","); got != "any.created,group.time,person.campus,person.lastname" {
		t.Fatalf("unexpected components %s", got)
	}
}

func TestFromDefinitionsRejectsInvalidDefinitions(t *testing.T) {
	deps := Dependencies{FieldTypes: newFieldTypes(t), Attributes: testAttributes}
	tests := []struct {
		name string
		def  Definition
		want string
	}{
		{"unknown kind", Definition{Key: "a", Kind: "magic"}, "unknown filter kind"},
		{"unused option", Definition{Key: "b", Kind: "property", Options: map[string]any{"property": "x", "colour": "red"}}, "invalid filter options"},
		{"unknown attribute", Definition{Key: "c", Kind: "attribute", EntityType: "Group", Options: map[string]any{"attribute": "Missing"}}, "unknown attribute"},
		{"attribute of another type", Definition{Key: "d", Kind: "attribute", EntityType: "Person", Options: map[string]any{"attribute": "ServiceTime"}}, "unknown attribute"},
	}

	for _, tt := range tests {
		_, err := FromDefinitions([]Definition{tt.def}, deps)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	a, _ := NewPropertyFilter("same", "", "", PropertyOptions{Property: "A"}, nil)
	b, _ := NewPropertyFilter("same", "", "", PropertyOptions{Property: "B"}, nil)
	if _, err := NewRegistry(a, b); err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	empty, _ := NewPropertyFilter("", "", "", PropertyOptions{Property: "A"}, nil)
	if _, err := NewRegistry(empty); err == nil {
		t.Fatalf("expected empty key error")
	}
	if _, err := NewRegistry(nil); err == nil {
		t.Fatalf("expected nil component error")
	}
}
