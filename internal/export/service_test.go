package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
	"github.com/rpattn/dataview/internal/predicate"
)

var groupAttributes = []domain.AttributeDefinition{
	{Key: "ServiceTime", Name: "Service Time", EntityType: "Group", FieldType: fieldtype.TimeKey},
	{Key: "MeetingDays", EntityType: "Group", FieldType: fieldtype.DayOfWeekKey},
	{Key: "Nickname", EntityType: "Person", FieldType: fieldtype.TextKey},
}

func newColumns(t *testing.T) []Column {
	t.Helper()
	types, err := fieldtype.NewRegistry(fieldtype.Defaults(fieldtype.Dependencies{})...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	columns, err := ColumnsFor("group", groupAttributes, types)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return columns
}

func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	return rows
}

func TestWriteGridFormatsThroughFieldTypes(t *testing.T) {
	id := uuid.MustParse("9d3c7a4e-5f61-4f0b-a2c8-1e6b7d9f0a11")
	entity := domain.Entity{
		ID:         id,
		EntityType: "Group",
		Properties: map[string]any{"ServiceTime": "18:30:00", "MeetingDays": "3,0"},
	}

	var buf bytes.Buffer
	if err := WriteGrid(context.Background(), &buf, "Group", newColumns(t), []domain.Entity{entity}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{
		{"Id", "Service Time", "Meeting Days"},
		{id.String(), "6:30 PM", "Sunday,Wednesday"},
	}
	if diff := cmp.Diff(want, readRows(t, buf.Bytes(), "Group")); diff != "" {
		t.Fatalf("unexpected grid (-want +got):\n%s", diff)
	}
}

type pagedEntities struct {
	entities []domain.Entity
	calls    int
}

func (p *pagedEntities) Create(context.Context, domain.Entity) (domain.Entity, error) {
	return domain.Entity{}, nil
}

func (p *pagedEntities) GetByID(context.Context, uuid.UUID) (domain.Entity, error) {
	return domain.Entity{}, nil
}

func (p *pagedEntities) ListFiltered(_ context.Context, _ string, _ predicate.Expression, limit, offset int) ([]domain.Entity, int, error) {
	p.calls++
	if offset >= len(p.entities) {
		return nil, len(p.entities), nil
	}
	end := offset + limit
	if end > len(p.entities) {
		end = len(p.entities)
	}
	return p.entities[offset:end], len(p.entities), nil
}

func TestServiceExportPagesThroughResults(t *testing.T) {
	repo := &pagedEntities{}
	for i := 0; i < 5; i++ {
		repo.entities = append(repo.entities, domain.Entity{
			ID:         uuid.New(),
			EntityType: "Group",
			Properties: map[string]any{"ServiceTime": "09:00:00"},
			CreatedAt:  time.Now(),
		})
	}

	var buf bytes.Buffer
	rows, err := NewService(repo, WithPageSize(2)).Export(context.Background(), &buf, "Group", predicate.True(), newColumns(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 5 || repo.calls != 3 {
		t.Fatalf("expected 5 rows over 3 pages, got %d rows in %d calls", rows, repo.calls)
	}

	grid := readRows(t, buf.Bytes(), "Group")
	if len(grid) != 6 || grid[5][1] != "9:00 AM" {
		t.Fatalf("unexpected grid %v", grid)
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Group", "Group"},
		{"", "Export"},
		{"a/b:c", "a-b-c"},
		{"'quoted'", "quoted"},
		{"Very Long Entity Type Name Exceeding", "Very Long Entity Type Name Exce"},
	}
	for _, tt := range tests {
		if got := sheetName(tt.in); got != tt.want {
			t.Fatalf("sheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
