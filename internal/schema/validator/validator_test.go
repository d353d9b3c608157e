package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
)

type noFiles struct{}

func (noFiles) GetBinaryFile(context.Context, int) (*domain.BinaryFile, error) { return nil, nil }
func (noFiles) GetBinaryFileByGUID(context.Context, uuid.UUID) (*domain.BinaryFile, error) {
	return nil, nil
}
func (noFiles) ListBinaryFileTypes(context.Context) ([]domain.BinaryFileType, error) {
	return nil, nil
}

func newTypes(t *testing.T) *fieldtype.Registry {
	t.Helper()
	r, err := fieldtype.NewRegistry(fieldtype.Defaults(fieldtype.Dependencies{BinaryFiles: noFiles{}})...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func TestValidateAttributes_Accepts(t *testing.T) {
	defs := []domain.AttributeDefinition{
		{Key: "ServiceTime", EntityType: "Group", FieldType: fieldtype.TimeKey, DefaultValue: "09:30:00"},
		{Key: "MeetingDays", EntityType: "Group", FieldType: fieldtype.DayOfWeekKey, DefaultValue: "0,6"},
		{Key: "Photo", EntityType: "Person", FieldType: fieldtype.BinaryFileKey, Configuration: map[string]string{"binaryfiletype": "2"}},
		{Key: "ServiceTime", EntityType: "Person", FieldType: fieldtype.TimeKey},
	}
	if err := ValidateAttributes(defs, newTypes(t)); err != nil {
		t.Fatalf("expected validation to pass, got error: %v", err)
	}
}

func TestValidateAttributes_Rejects(t *testing.T) {
	tests := []struct {
		name string
		defs []domain.AttributeDefinition
		want string
	}{
		{"missing key", []domain.AttributeDefinition{{Name: "Nameless", FieldType: fieldtype.TextKey}}, "has no key"},
		{"padded key", []domain.AttributeDefinition{{Key: " Nick ", FieldType: fieldtype.TextKey}}, "whitespace"},
		{"duplicate", []domain.AttributeDefinition{
			{Key: "Nick", EntityType: "Person", FieldType: fieldtype.TextKey},
			{Key: "nick", EntityType: "person", FieldType: fieldtype.TextKey},
		}, "declared twice"},
		{"unknown type", []domain.AttributeDefinition{{Key: "x", FieldType: "colour"}}, "unknown field type"},
		{"undeclared configuration", []domain.AttributeDefinition{
			{Key: "Nick", FieldType: fieldtype.TextKey, Configuration: map[string]string{"maxlength": "5"}},
		}, "does not declare"},
		{"bad time default", []domain.AttributeDefinition{{Key: "t", FieldType: fieldtype.TimeKey, DefaultValue: "noonish"}}, "not a time of day"},
		{"bad day default", []domain.AttributeDefinition{{Key: "d", FieldType: fieldtype.DayOfWeekKey, DefaultValue: "1,9"}}, "not an entry"},
	}

	for _, tt := range tests {
		err := ValidateAttributes(tt.defs, newTypes(t))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}

func TestValidateProperties(t *testing.T) {
	defs := []domain.AttributeDefinition{
		{Key: "Photo", EntityType: "Person", FieldType: fieldtype.BinaryFileKey},
		{Key: "MeetingDays", EntityType: "Person", FieldType: fieldtype.DayOfWeekKey},
		{Key: "Age", EntityType: "Person", FieldType: fieldtype.TextKey},
		{Key: "ServiceTime", EntityType: "Group", FieldType: fieldtype.TimeKey},
	}

	ok := ValidateProperties("Person", map[string]any{
		"Photo":       uuid.NewString(),
		"MeetingDays": "1,3",
		"Age":         nil,
	}, defs, newTypes(t))
	if !ok.IsValid || len(ok.Warnings) != 0 {
		t.Fatalf("expected valid properties, got %+v", ok)
	}

	bad := ValidateProperties("Person", map[string]any{
		"Photo":       "not-a-guid",
		"MeetingDays": "1,8",
		"Age":         42,
		"ServiceTime": "10:00:00",
	}, defs, newTypes(t))
	if bad.IsValid || len(bad.Errors) != 3 {
		t.Fatalf("expected three errors, got %+v", bad.Errors)
	}
	if len(bad.Warnings) != 1 || bad.Warnings[0].Field != "ServiceTime" {
		t.Fatalf("expected attribute of another entity type to warn, got %+v", bad.Warnings)
	}
}
