package fieldtype

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
)

var greekSource = ListSource{
	{Key: "g1", Label: "Alpha"},
	{Key: "g2", Label: "Beta"},
	{Key: "g3", Label: "Gamma"},
}

func TestSelectFromListFormatValueFollowsSourceOrder(t *testing.T) {
	ft := NewSelectFromList("greek", "Greek", greekSource)
	ctx := context.Background()

	tests := map[string]string{
		"g1,g2":     "Alpha,Beta",
		"g2,g1":     "Alpha,Beta",
		"g1,g9,g2":  "Alpha,Beta",
		",G3,,":     "Gamma",
		"g9":        "",
		"":          "",
		"g1,g1,g1,": "Alpha",
	}
	for value, want := range tests {
		if got := ft.FormatValue(ctx, value, nil, false); got != want {
			t.Fatalf("FormatValue(%q) = %q, want %q", value, got, want)
		}
		if again := ft.FormatValue(ctx, value, nil, false); again != want {
			t.Fatalf("FormatValue(%q) is not idempotent: %q", value, again)
		}
	}
}

func TestSelectFromListMatchesGUIDKeys(t *testing.T) {
	source := ListSource{{Key: "6A0B2D5C-1D3E-4F60-8A7B-9C0D1E2F3A4B", Label: "Main Campus"}}
	ft := NewSelectFromList("campus", "Campus", source)

	got := ft.FormatValue(context.Background(), "{6a0b2d5c-1d3e-4f60-8a7b-9c0d1e2f3a4b}", nil, true)
	if got != "Main Campus" {
		t.Fatalf("expected guid key to match regardless of format, got %q", got)
	}
}

func TestSelectFromListEditControl(t *testing.T) {
	ctx := context.Background()
	if ctl := NewSelectFromList("empty", "Empty", nil).EditControl(ctx, nil, "attr"); ctl != nil {
		t.Fatalf("expected no edit control for an empty list, got %#v", ctl)
	}

	ft := NewSelectFromList("greek", "Greek", greekSource)
	ctl, ok := ft.EditControl(ctx, nil, "attr").(editor.CheckBoxList)
	if !ok {
		t.Fatalf("expected check box list")
	}
	if !ctl.Horizontal || len(ctl.Items) != 3 || ctl.Items[1].Text != "Beta" || ctl.Items[1].Value != "g2" {
		t.Fatalf("unexpected edit control %#v", ctl)
	}
}

func TestSelectFromListEditValueRoundTrip(t *testing.T) {
	ctx := context.Background()
	ft := NewSelectFromList("greek", "Greek", greekSource)
	blank := ft.EditControl(ctx, nil, "attr").(editor.CheckBoxList)

	state := blank.WithSelected(func(v string) bool { return v == "g1" || v == "g3" })
	value, ok := ft.GetEditValue(ctx, state, nil)
	if !ok || value != "g1,g3" {
		t.Fatalf("unexpected edit value %q (%v)", value, ok)
	}

	restored := ft.SetEditValue(ctx, blank, nil, value)
	if diff := cmp.Diff(editor.Control(state), restored); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	unresolved := ft.SetEditValue(ctx, blank, nil, "G2,missing").(editor.CheckBoxList)
	if diff := cmp.Diff([]string{"g2"}, unresolved.SelectedValues()); diff != "" {
		t.Fatalf("unexpected selection (-want +got):\n%s", diff)
	}

	if _, ok := ft.GetEditValue(ctx, editor.TextBox{ID: "x"}, nil); ok {
		t.Fatalf("expected no value from a foreign control")
	}
}

func TestSelectFromListFilterConfig(t *testing.T) {
	ft := NewSelectFromList("greek", "Greek", greekSource)
	field := ft.GetFilterConfig(AttributeDescriptor{Key: "FavoriteLetter"})

	if field.Title != "Favorite Letter" {
		t.Fatalf("expected title from split key, got %q", field.Title)
	}
	if field.ComparisonTypes != domain.ListFilterComparisonTypes {
		t.Fatalf("unexpected comparisons %v", field.ComparisonTypes.Members())
	}
	if len(field.ListItems) != 3 {
		t.Fatalf("expected list items, got %#v", field.ListItems)
	}
	if !ft.Descriptor().Capabilities.ListSelection {
		t.Fatalf("expected list selection capability")
	}
}
