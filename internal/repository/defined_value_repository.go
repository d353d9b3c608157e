package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/db"
	"github.com/rpattn/dataview/internal/domain"
)

type definedValueRepository struct {
	db db.DBTX
}

// NewDefinedValueRepository creates a repository over defined types and their
// values
func NewDefinedValueRepository(exec db.DBTX) DefinedValueRepository {
	return &definedValueRepository{db: exec}
}

func (r *definedValueRepository) ListDefinedTypes(ctx context.Context) ([]domain.DefinedType, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name FROM defined_types ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list defined types")
	}
	defer rows.Close()

	types := make([]domain.DefinedType, 0)
	for rows.Next() {
		var t domain.DefinedType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, errors.Wrap(err, "scan defined type row")
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate defined type rows")
	}
	return types, nil
}

// ListByDefinedType returns the values of one defined type in display order.
func (r *definedValueRepository) ListByDefinedType(ctx context.Context, definedTypeID int) ([]domain.DefinedValue, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, guid, defined_type_id, value, description, sort_order
		FROM defined_values
		WHERE defined_type_id = $1
		ORDER BY sort_order, value`,
		definedTypeID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list defined values of type %d", definedTypeID)
	}
	defer rows.Close()

	values := make([]domain.DefinedValue, 0)
	for rows.Next() {
		var v domain.DefinedValue
		if err := rows.Scan(&v.ID, &v.GUID, &v.DefinedTypeID, &v.Value, &v.Description, &v.Order); err != nil {
			return nil, errors.Wrap(err, "scan defined value row")
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate defined value rows")
	}
	return values, nil
}
