package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/predicate"
)

// EntityRepository defines the interface for entity operations
type EntityRepository interface {
	Create(ctx context.Context, entity domain.Entity) (domain.Entity, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Entity, error)
	// ListFiltered returns one page of entities of entityType matching expr
	// and the total number of matches.
	ListFiltered(ctx context.Context, entityType string, expr predicate.Expression, limit int, offset int) ([]domain.Entity, int, error)
}

// BinaryFileRepository defines the interface for stored file lookups. Single
// lookups return nil without error when the file does not exist.
type BinaryFileRepository interface {
	GetBinaryFile(ctx context.Context, id int) (*domain.BinaryFile, error)
	GetBinaryFileByGUID(ctx context.Context, guid uuid.UUID) (*domain.BinaryFile, error)
	GetByGUIDs(ctx context.Context, guids []uuid.UUID) ([]domain.BinaryFile, error)
	ListBinaryFileTypes(ctx context.Context) ([]domain.BinaryFileType, error)
}

// DefinedValueRepository defines the interface for defined type lookups
type DefinedValueRepository interface {
	ListDefinedTypes(ctx context.Context) ([]domain.DefinedType, error)
	ListByDefinedType(ctx context.Context, definedTypeID int) ([]domain.DefinedValue, error)
}
