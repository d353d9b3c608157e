package domain

import (
	"time"

	"github.com/google/uuid"
)

// BinaryFile is a stored file referenced by attribute values. Attribute values
// persist the GUID rather than the sequential ID because IDs are not portable
// across environments.
type BinaryFile struct {
	ID               int       `json:"id"`
	GUID             uuid.UUID `json:"guid"`
	BinaryFileTypeID *int      `json:"binary_file_type_id,omitempty"`
	FileName         string    `json:"file_name"`
	MimeType         string    `json:"mime_type"`
	CreatedAt        time.Time `json:"created_at"`
}

// BinaryFileType groups binary files, e.g. "Person Image".
type BinaryFileType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
