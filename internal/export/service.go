// Package export renders filtered entity grids as Excel workbooks, formatting
// every attribute column through its field type.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
	"github.com/rpattn/dataview/internal/predicate"
	"github.com/rpattn/dataview/internal/repository"
)

// Column is one grid column. Columns without a field type show the raw
// entity value.
type Column struct {
	Header        string
	Field         string
	FieldType     fieldtype.FieldType
	Configuration fieldtype.ConfigurationValues
}

// ColumnsFor returns an id column followed by one column per attribute
// declared on entityType, in declaration order.
func ColumnsFor(entityType string, defs []domain.AttributeDefinition, types *fieldtype.Registry) ([]Column, error) {
	columns := []Column{{Header: "Id", Field: "id"}}
	for _, def := range defs {
		if !def.AppliesTo(entityType) {
			continue
		}
		ft, ok := types.Lookup(def.FieldType)
		if !ok {
			return nil, errors.Errorf("attribute %s uses unknown field type %q", def.Key, def.FieldType)
		}
		header := def.Name
		if header == "" {
			header = domain.SplitCase(def.Key)
		}
		columns = append(columns, Column{
			Header:        header,
			Field:         def.Key,
			FieldType:     ft,
			Configuration: ft.Descriptor().Configure(def.Configuration),
		})
	}
	return columns, nil
}

type Service struct {
	entities repository.EntityRepository
	pageSize int
}

type Option func(*Service)

func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

func NewService(entities repository.EntityRepository, opts ...Option) *Service {
	s := &Service{entities: entities, pageSize: 500}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export pages through every entity of entityType matching expr and writes
// them to w as a single sheet workbook. expr must be bound to
// repository.EntityParameter. It returns the number of rows written.
func (s *Service) Export(ctx context.Context, w io.Writer, entityType string, expr predicate.Expression, columns []Column) (int, error) {
	grid, err := newGrid(entityType, columns)
	if err != nil {
		return 0, err
	}
	defer grid.close()

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return grid.rows, err
		}
		entities, total, err := s.entities.ListFiltered(ctx, entityType, expr, s.pageSize, offset)
		if err != nil {
			return grid.rows, errors.Wrap(err, "list entities")
		}
		for _, entity := range entities {
			if err := grid.append(ctx, entity); err != nil {
				return grid.rows, err
			}
		}
		offset += len(entities)
		if len(entities) < s.pageSize || offset >= total {
			break
		}
	}

	if err := grid.write(w); err != nil {
		return grid.rows, err
	}
	logrus.WithFields(logrus.Fields{
		"entityType": entityType,
		"rows":       grid.rows,
	}).Info("Export completed")
	return grid.rows, nil
}

// WriteGrid writes entities to w as a single sheet workbook.
func WriteGrid(ctx context.Context, w io.Writer, entityType string, columns []Column, entities []domain.Entity) error {
	grid, err := newGrid(entityType, columns)
	if err != nil {
		return err
	}
	defer grid.close()

	for _, entity := range entities {
		if err := grid.append(ctx, entity); err != nil {
			return err
		}
	}
	return grid.write(w)
}

type grid struct {
	file    *excelize.File
	stream  *excelize.StreamWriter
	columns []Column
	rows    int
}

func newGrid(entityType string, columns []Column) (*grid, error) {
	f := excelize.NewFile()
	sheet := sheetName(entityType)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "name sheet")
	}
	stream, err := f.NewStreamWriter(sheet)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "open sheet stream")
	}

	headers := make([]any, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
	}
	if err := stream.SetRow("A1", headers); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "write header")
	}
	return &grid{file: f, stream: stream, columns: columns}, nil
}

func (g *grid) append(ctx context.Context, entity domain.Entity) error {
	row := make([]any, len(g.columns))
	for i, c := range g.columns {
		row[i] = cellValue(ctx, c, entity)
	}
	cell, err := excelize.CoordinatesToCellName(1, g.rows+2)
	if err != nil {
		return errors.Wrap(err, "locate row")
	}
	if err := g.stream.SetRow(cell, row); err != nil {
		return errors.Wrapf(err, "write entity %s", entity.ID)
	}
	g.rows++
	return nil
}

func (g *grid) write(w io.Writer) error {
	if err := g.stream.Flush(); err != nil {
		return errors.Wrap(err, "flush sheet")
	}
	if err := g.file.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func (g *grid) close() {
	if err := g.file.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close workbook")
	}
}

func cellValue(ctx context.Context, c Column, entity domain.Entity) string {
	if c.FieldType != nil {
		return c.FieldType.FormatValue(ctx, entity.AttributeValue(c.Field), c.Configuration, true)
	}
	switch strings.ToLower(c.Field) {
	case "id":
		return entity.ID.String()
	case "entity_type", "entitytype":
		return entity.EntityType
	case "created_at", "createdat":
		return formatValue(entity.CreatedAt)
	case "updated_at", "updatedat":
		return formatValue(entity.UpdatedAt)
	}
	return formatValue(entity.Properties[c.Field])
}

// sheetName makes entityType usable as a worksheet name.
func sheetName(entityType string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(entityType))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Export"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

func formatValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case json.Number:
		return v.String()
	case float32, float64, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%v", v)
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
