package fieldtype

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
)

// BinaryFileResolver looks binary files up by id or GUID. A missing file is
// reported as (nil, nil).
type BinaryFileResolver interface {
	GetBinaryFile(ctx context.Context, id int) (*domain.BinaryFile, error)
	GetBinaryFileByGUID(ctx context.Context, guid uuid.UUID) (*domain.BinaryFile, error)
	ListBinaryFileTypes(ctx context.Context) ([]domain.BinaryFileType, error)
}

// BinaryFileTypeKey is the configuration key limiting the picker to one file
// type.
const BinaryFileTypeKey = "binaryFileType"

// BinaryFileKey is the registry key of BinaryFile.
const BinaryFileKey = "binaryfile"

// BinaryFile stores a reference to a binary file by GUID and displays its
// file name.
type BinaryFile struct {
	files BinaryFileResolver
}

// NewBinaryFile returns the binary file field type resolving through files.
func NewBinaryFile(files BinaryFileResolver) BinaryFile {
	return BinaryFile{files: files}
}

func (BinaryFile) Descriptor() Descriptor {
	return Descriptor{
		Key:         BinaryFileKey,
		Name:        "File",
		Description: "A reference to a stored file.",
		Configuration: []ConfigurationKey{
			{Name: BinaryFileTypeKey, Label: "File Type", Help: "The type of files to list", Control: ControlDropDown},
		},
		Capabilities: Capabilities{FilterOperators: true},
	}
}

// FormatValue shows the referenced file name, or "" when the value is not a
// GUID or the file cannot be found.
func (b BinaryFile) FormatValue(ctx context.Context, value string, _ ConfigurationValues, _ bool) string {
	file := b.byGUID(ctx, value)
	if file == nil {
		return ""
	}
	return formatText(file.FileName)
}

func (b BinaryFile) ConfigurationKeys() []string {
	return b.Descriptor().KeyNames()
}

// ConfigurationControls lists the file types ordered by name after an empty
// entry.
func (b BinaryFile) ConfigurationControls(ctx context.Context) []editor.Control {
	items := []editor.ListItem{{Text: "", Value: ""}}
	types, err := b.files.ListBinaryFileTypes(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to list binary file types")
	}
	for _, ft := range types {
		items = append(items, editor.ListItem{Text: ft.Name, Value: strconv.Itoa(ft.ID)})
	}
	return configurationControls(b.Descriptor(), map[string][]editor.ListItem{BinaryFileTypeKey: items})
}

func (b BinaryFile) ConfigurationValues(controls []editor.Control) ConfigurationValues {
	return readConfiguration(b.Descriptor(), controls)
}

func (b BinaryFile) SetConfigurationValues(controls []editor.Control, cfg ConfigurationValues) []editor.Control {
	return writeConfiguration(b.Descriptor(), controls, cfg)
}

func (b BinaryFile) EditControl(_ context.Context, cfg ConfigurationValues, id string) editor.Control {
	picker := editor.FilePicker{ID: id}
	if typeID, err := strconv.Atoi(b.Descriptor().ConfigValue(cfg, BinaryFileTypeKey)); err == nil {
		picker.BinaryFileTypeID = &typeID
	}
	return picker
}

// GetEditValue resolves the picked file id to the file's GUID.
func (b BinaryFile) GetEditValue(ctx context.Context, control editor.Control, _ ConfigurationValues) (string, bool) {
	picker, ok := control.(editor.FilePicker)
	if !ok || picker.SelectedID == nil {
		return "", false
	}
	file, err := b.files.GetBinaryFile(ctx, *picker.SelectedID)
	if err != nil {
		logrus.WithError(err).WithField("binaryFileId", *picker.SelectedID).Warn("failed to resolve binary file")
		return "", false
	}
	if file == nil {
		return "", false
	}
	return file.GUID.String(), true
}

// SetEditValue resolves a stored GUID back to a file and selects it. An
// unresolvable value clears the picker.
func (b BinaryFile) SetEditValue(ctx context.Context, control editor.Control, _ ConfigurationValues, value string) editor.Control {
	picker, ok := control.(editor.FilePicker)
	if !ok {
		return control
	}
	file := b.byGUID(ctx, value)
	if file == nil {
		return picker.WithSelection(nil, "")
	}
	return picker.WithSelection(&file.ID, file.FileName)
}

func (b BinaryFile) GetFilterConfig(attr AttributeDescriptor) EntityField {
	return filterConfig(b.Descriptor(), attr, domain.ListFilterComparisonTypes)
}

func (b BinaryFile) byGUID(ctx context.Context, value string) *domain.BinaryFile {
	guid, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	file, err := b.files.GetBinaryFileByGUID(ctx, guid)
	if err != nil {
		logrus.WithError(err).WithField("guid", guid).Warn("failed to resolve binary file")
		return nil
	}
	if file == nil {
		logrus.WithField("guid", guid).Debug("binary file not found")
	}
	return file
}
