// Package ingestion imports entity records from CSV or Excel uploads. Each
// column header names an attribute of the target entity type; cells are
// checked by the attribute's field type before a record is created.
package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
	"github.com/rpattn/dataview/internal/repository"
	"github.com/rpattn/dataview/internal/schema/validator"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// maxRowErrors caps the row errors reported in a Summary.
const maxRowErrors = 100

// Service imports uploads into entity records.
type Service struct {
	entities   repository.EntityRepository
	attributes []domain.AttributeDefinition
	types      *fieldtype.Registry
	logger     logrus.FieldLogger
}

// NewService creates a new ingestion service.
func NewService(
	entities repository.EntityRepository,
	attributes []domain.AttributeDefinition,
	types *fieldtype.Registry,
	logger logrus.FieldLogger,
) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		entities:   entities,
		attributes: attributes,
		types:      types,
		logger:     logger,
	}
}

// Request describes the ingestion input.
type Request struct {
	EntityType string
	FileName   string
	// HeaderRowIndex selects the header row; nil picks the first non empty row.
	HeaderRowIndex *int
	// DryRun validates every row without creating records.
	DryRun bool
	Data   io.Reader
}

// RowError reports why a data row was rejected. Row is the 1-based row
// number in the uploaded sheet.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Summary returns ingestion level metrics.
type Summary struct {
	TotalRows      int        `json:"totalRows"`
	ValidRows      int        `json:"validRows"`
	InvalidRows    int        `json:"invalidRows"`
	Columns        []string   `json:"columns"`
	IgnoredColumns []string   `json:"ignoredColumns"`
	Errors         []RowError `json:"errors"`
}

type tableData struct {
	headers []string
	rows    [][]string
	// rowNumbers holds the 1-based sheet row of each data row.
	rowNumbers []int
}

// column binds a sheet column to the attribute it fills.
type column struct {
	index int
	def   domain.AttributeDefinition
	ft    fieldtype.FieldType
}

// Ingest reads the uploaded file and creates one record per valid row.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	summary := Summary{
		Columns:        []string{},
		IgnoredColumns: []string{},
		Errors:         []RowError{},
	}

	if strings.TrimSpace(req.EntityType) == "" {
		return summary, errors.New("entity type is required")
	}
	if req.Data == nil {
		return summary, errors.New("data reader is required")
	}
	if !req.DryRun && s.entities == nil {
		return summary, errors.New("no entity store configured")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return summary, errors.Wrap(err, "failed to read upload")
	}
	if len(payload) == 0 {
		return summary, errors.New("file is empty")
	}

	table, err := parseTable(req.FileName, payload, req.HeaderRowIndex)
	if err != nil {
		return summary, err
	}

	columns, ignored, err := s.bindColumns(req.EntityType, table.headers)
	if err != nil {
		return summary, err
	}
	for _, c := range columns {
		summary.Columns = append(summary.Columns, c.def.Key)
	}
	summary.IgnoredColumns = append(summary.IgnoredColumns, ignored...)
	if len(columns) == 0 {
		return summary, errors.Errorf("no column matches an attribute of %s", req.EntityType)
	}

	summary.TotalRows = len(table.rows)
	log := s.logger.WithFields(logrus.Fields{
		"entityType": req.EntityType,
		"file":       req.FileName,
	})

	for rowIdx, row := range table.rows {
		rowNumber := table.rowNumbers[rowIdx]

		properties := make(map[string]any, len(columns))
		for _, c := range columns {
			if c.index >= len(row) {
				continue
			}
			raw := strings.TrimSpace(row[c.index])
			if raw == "" {
				continue
			}
			properties[c.def.Key] = persistedValue(c.ft, raw)
		}

		result := validator.ValidateProperties(req.EntityType, properties, s.attributes, s.types)
		if !result.IsValid {
			var messages []string
			for _, validationErr := range result.Errors {
				messages = append(messages, fmt.Sprintf("%s: %s", validationErr.Field, validationErr.Message))
			}
			summary.rowError(rowNumber, strings.Join(messages, "; "))
			continue
		}

		if req.DryRun {
			summary.ValidRows++
			continue
		}

		if _, err := s.entities.Create(ctx, domain.NewEntity(req.EntityType, properties)); err != nil {
			log.WithError(err).WithField("row", rowNumber).Warn("Failed to insert entity")
			summary.rowError(rowNumber, "failed to insert entity: "+err.Error())
			continue
		}
		summary.ValidRows++
	}

	log.WithFields(logrus.Fields{
		"valid":   summary.ValidRows,
		"invalid": summary.InvalidRows,
		"dryRun":  req.DryRun,
	}).Info("Ingestion finished")
	return summary, nil
}

func (s *Summary) rowError(row int, message string) {
	s.InvalidRows++
	if len(s.Errors) < maxRowErrors {
		s.Errors = append(s.Errors, RowError{Row: row, Message: message})
	}
}

// bindColumns matches headers to the attributes of entityType by key or name,
// ignoring case. The Id column written by exports is skipped silently.
func (s *Service) bindColumns(entityType string, headers []string) ([]column, []string, error) {
	var columns []column
	var ignored []string
	bound := make(map[string]bool)

	for idx, header := range headers {
		if header == "" || strings.EqualFold(header, "id") {
			continue
		}
		def, ok := s.attributeFor(entityType, header)
		if !ok || bound[strings.ToLower(def.Key)] {
			ignored = append(ignored, header)
			continue
		}
		ft, ok := s.types.Lookup(def.FieldType)
		if !ok {
			return nil, nil, errors.Errorf("attribute %s uses unknown field type %q", def.Key, def.FieldType)
		}
		bound[strings.ToLower(def.Key)] = true
		columns = append(columns, column{index: idx, def: def, ft: ft})
	}
	return columns, ignored, nil
}

func (s *Service) attributeFor(entityType, header string) (domain.AttributeDefinition, bool) {
	for _, def := range s.attributes {
		if !def.AppliesTo(entityType) {
			continue
		}
		if strings.EqualFold(def.Key, header) || (def.Name != "" && strings.EqualFold(def.Name, header)) {
			return def, true
		}
	}
	return domain.AttributeDefinition{}, false
}

// persistedValue accepts cells in display form where the field type can map
// them back: time of day text and list labels.
func persistedValue(ft fieldtype.FieldType, raw string) string {
	switch t := ft.(type) {
	case fieldtype.SelectFromList:
		return listKeys(t.ListSource(), raw)
	case fieldtype.OperandNormalizer:
		return t.NormalizeOperand(raw)
	}
	return raw
}

func listKeys(source fieldtype.ListSource, raw string) string {
	parts := domain.SplitList(raw, ",")
	keys := make([]string, len(parts))
	for i, part := range parts {
		keys[i] = part
		for _, option := range source {
			if strings.EqualFold(option.Label, part) {
				keys[i] = option.Key
				break
			}
		}
	}
	return strings.Join(keys, ",")
}

func parseTable(fileName string, payload []byte, headerRowIndex *int) (tableData, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload, headerRowIndex)
	case ".xlsx":
		return parseExcel(payload, headerRowIndex)
	default:
		return tableData{}, errors.Wrap(ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte, headerRowIndex *int) (tableData, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return tableData{}, errors.Wrap(err, "failed to read csv")
	}
	return normalizeTable(records, headerRowIndex)
}

func parseExcel(payload []byte, headerRowIndex *int) (tableData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return tableData{}, errors.Wrap(err, "failed to open xlsx")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return tableData{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return tableData{}, errors.Wrap(err, "failed to read rows from xlsx")
	}
	return normalizeTable(rows, headerRowIndex)
}

func normalizeTable(records [][]string, headerRowIndex *int) (tableData, error) {
	if len(records) == 0 {
		return tableData{}, errors.New("no rows found in file")
	}

	start := 0
	if headerRowIndex != nil {
		if *headerRowIndex < 0 || *headerRowIndex >= len(records) {
			return tableData{}, errors.Errorf("header row index %d out of range", *headerRowIndex)
		}
		if isEmptyRow(records[*headerRowIndex]) {
			return tableData{}, errors.Errorf("selected header row %d is empty", *headerRowIndex+1)
		}
		start = *headerRowIndex
	}

	headerIndex := -1
	var dataRows [][]string
	var rowNumbers []int
	for idx := start; idx < len(records); idx++ {
		if isEmptyRow(records[idx]) {
			continue
		}
		if headerIndex < 0 {
			headerIndex = idx
			continue
		}
		dataRows = append(dataRows, records[idx])
		rowNumbers = append(rowNumbers, idx+1)
	}
	if headerIndex < 0 {
		return tableData{}, errors.New("header row could not be detected")
	}

	headers := make([]string, len(records[headerIndex]))
	for i, value := range records[headerIndex] {
		headers[i] = strings.TrimSpace(value)
	}

	return tableData{
		headers:    headers,
		rows:       dataRows,
		rowNumbers: rowNumbers,
	}, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
