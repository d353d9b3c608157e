package fieldtype

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
)

type stubDefinedValues struct {
	types  []domain.DefinedType
	values map[int][]domain.DefinedValue
	err    error
}

func (s *stubDefinedValues) ListDefinedTypes(context.Context) ([]domain.DefinedType, error) {
	return s.types, s.err
}

func (s *stubDefinedValues) ListByDefinedType(_ context.Context, id int) ([]domain.DefinedValue, error) {
	return s.values[id], s.err
}

func TestKeyValueListFormatValueCountsPairs(t *testing.T) {
	ft := NewKeyValueList(nil)
	ctx := context.Background()

	if got := ft.FormatValue(ctx, "a:1", nil, true); got != "1 Key Value Pair" {
		t.Fatalf("unexpected single pair format %q", got)
	}
	if got := ft.FormatValue(ctx, "|a:1||b:2|", nil, false); got != "2 Key Value Pairs" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := ft.FormatValue(ctx, "", nil, true); got != "0 Key Value Pairs" {
		t.Fatalf("unexpected empty format %q", got)
	}

	pairs := make([]string, 1200)
	for i := range pairs {
		pairs[i] = "k:v"
	}
	value := strings.Join(pairs, "|")
	if got := ft.FormatValue(ctx, value, nil, true); got != "1,200 Key Value Pairs" {
		t.Fatalf("unexpected grouped format %q", got)
	}
	if got := ft.FormatValue(ctx, value, nil, true); got != "1,200 Key Value Pairs" {
		t.Fatalf("format is not idempotent: %q", got)
	}
}

func TestKeyValueListEditValueRoundTrip(t *testing.T) {
	ft := NewKeyValueList(nil)
	ctx := context.Background()
	blank := ft.EditControl(ctx, nil, "attr").(editor.KeyValueList)

	state := blank.WithPairs([]editor.KeyValuePair{
		{Key: "home", Value: "555-1234"},
		{Key: "a:b|c", Value: "100%"},
		{Key: "", Value: "orphan"},
	})
	value, ok := ft.GetEditValue(ctx, state, nil)
	if !ok {
		t.Fatalf("expected a value")
	}
	if value != "home:555-1234|a%3Ab%7Cc:100%25|:orphan" {
		t.Fatalf("unexpected persisted value %q", value)
	}

	restored := ft.SetEditValue(ctx, blank, nil, value)
	if diff := cmp.Diff(editor.Control(state), restored); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyValueListDropsEmptyRows(t *testing.T) {
	got := EncodePairs([]editor.KeyValuePair{{Key: "a", Value: "1"}, {}, {Key: "b"}})
	if got != "a:1|b:" {
		t.Fatalf("unexpected encoding %q", got)
	}
	if diff := cmp.Diff([]editor.KeyValuePair{{Key: "a", Value: "1"}, {Key: "b"}}, DecodePairs(got)); diff != "" {
		t.Fatalf("unexpected decoding (-want +got):\n%s", diff)
	}
	if pairs := DecodePairs("novalue"); len(pairs) != 1 || pairs[0].Key != "novalue" || pairs[0].Value != "" {
		t.Fatalf("unexpected pairs %#v", pairs)
	}
}

func TestKeyValueListConfiguration(t *testing.T) {
	defined := &stubDefinedValues{types: []domain.DefinedType{{ID: 4, Name: "Phone Type"}}}
	ft := NewKeyValueList(defined)
	ctx := context.Background()

	if diff := cmp.Diff([]string{"keyprompt", "valueprompt", "definedtype", "customvalues"}, ft.ConfigurationKeys()); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}

	controls := ft.ConfigurationControls(ctx)
	if len(controls) != 4 {
		t.Fatalf("expected 4 controls, got %d", len(controls))
	}
	dd, ok := controls[2].(editor.DropDown)
	if !ok || len(dd.Items) != 2 || dd.Items[1].Value != "4" {
		t.Fatalf("unexpected defined type control %#v", controls[2])
	}

	cfg := ft.Descriptor().Configure(map[string]string{
		KeyPromptKey:    "Type",
		DefinedTypeKey:  "4",
		CustomValuesKey: "a,b",
		"unknown":       "ignored",
	})
	if _, ok := cfg["unknown"]; ok {
		t.Fatalf("unknown configuration keys must be ignored")
	}

	filled := ft.SetConfigurationValues(controls, cfg)
	if controls[0].(editor.TextBox).Text != "" {
		t.Fatalf("SetConfigurationValues must not modify its input")
	}
	read := ft.ConfigurationValues(filled)
	if diff := cmp.Diff(cfg.Values(), read.Values()); diff != "" {
		t.Fatalf("configuration round trip mismatch (-want +got):\n%s", diff)
	}
	if read[KeyPromptKey].Name != "Key Prompt" {
		t.Fatalf("expected labels on configuration values, got %#v", read[KeyPromptKey])
	}

	mismatched := ft.ConfigurationValues([]editor.Control{editor.DropDown{SelectedValue: "x"}})
	if mismatched[KeyPromptKey].Value != "" {
		t.Fatalf("controls of the wrong kind must be ignored")
	}
}

func TestKeyValueListValueOptions(t *testing.T) {
	ctx := context.Background()
	guid := uuid.New()
	defined := &stubDefinedValues{values: map[int][]domain.DefinedValue{
		4: {{ID: 10, GUID: guid, DefinedTypeID: 4, Value: "Mobile"}},
	}}
	ft := NewKeyValueList(defined)
	d := ft.Descriptor()

	ctl := ft.EditControl(ctx, d.Configure(map[string]string{DefinedTypeKey: "4", KeyPromptKey: "Name"}), "attr").(editor.KeyValueList)
	if ctl.KeyPrompt != "Name" {
		t.Fatalf("expected key prompt, got %q", ctl.KeyPrompt)
	}
	if len(ctl.ValueOptions) != 1 || ctl.ValueOptions[0].Value != guid.String() || ctl.ValueOptions[0].Text != "Mobile" {
		t.Fatalf("unexpected defined value options %#v", ctl.ValueOptions)
	}

	ctl = ft.EditControl(ctx, d.Configure(map[string]string{CustomValuesKey: "h:Home, w:Work"}), "attr").(editor.KeyValueList)
	want := []editor.ListItem{{Text: "Home", Value: "h"}, {Text: "Work", Value: "w"}}
	if diff := cmp.Diff(want, ctl.ValueOptions); diff != "" {
		t.Fatalf("unexpected custom options (-want +got):\n%s", diff)
	}

	failing := NewKeyValueList(&stubDefinedValues{err: errors.New("db down")})
	ctl = failing.EditControl(ctx, d.Configure(map[string]string{DefinedTypeKey: "4", CustomValuesKey: "x"}), "attr").(editor.KeyValueList)
	if len(ctl.ValueOptions) != 1 || ctl.ValueOptions[0].Value != "x" {
		t.Fatalf("expected custom values when the defined type cannot be read, got %#v", ctl.ValueOptions)
	}
}
