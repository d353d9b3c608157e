package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/db"
	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/predicate"
)

// EntityAlias is the table alias filter expressions must be bound to.
const EntityAlias = "e"

// DefaultPageSize applies when ListFiltered is called without a limit.
const DefaultPageSize = 25

const entityColumns = "e.id, e.entity_type, e.properties, e.created_at, e.updated_at"

// EntityParameter returns the parameter ListFiltered expects expressions to
// be bound to.
func EntityParameter() predicate.Parameter {
	return predicate.NewParameter(EntityAlias)
}

// entityRepository implements EntityRepository interface
type entityRepository struct {
	db      db.DBTX
	encoder *predicate.SQLEncoder
}

// NewEntityRepository creates a new entity repository
func NewEntityRepository(exec db.DBTX) EntityRepository {
	return &entityRepository{
		db:      exec,
		encoder: predicate.NewSQLEncoder(nil),
	}
}

// Create creates a new entity
func (r *entityRepository) Create(ctx context.Context, entity domain.Entity) (domain.Entity, error) {
	propertiesJSON, err := entity.GetPropertiesAsJSONB()
	if err != nil {
		return domain.Entity{}, errors.Wrap(err, "failed to marshal properties")
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO entities AS e (id, entity_type, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+entityColumns,
		entity.ID, entity.EntityType, propertiesJSON, entity.CreatedAt, entity.UpdatedAt,
	)
	created, err := scanEntity(row)
	if err != nil {
		return domain.Entity{}, errors.Wrap(err, "failed to create entity")
	}
	return created, nil
}

// GetByID retrieves an entity by ID
func (r *entityRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Entity, error) {
	row := r.db.QueryRow(ctx, "SELECT "+entityColumns+" FROM entities e WHERE e.id = $1", id)
	entity, err := scanEntity(row)
	if err != nil {
		return domain.Entity{}, errors.Wrapf(err, "failed to get entity %s", id)
	}
	return entity, nil
}

// ListFiltered runs expr against the entities table. expr must be bound to
// EntityParameter.
func (r *entityRepository) ListFiltered(
	ctx context.Context,
	entityType string,
	expr predicate.Expression,
	limit int,
	offset int,
) ([]domain.Entity, int, error) {
	q := buildFilteredQuery(r.encoder, entityType, expr, limit, offset)

	var total int64
	if err := r.db.QueryRow(ctx, q.countSQL, q.countArgs...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count filtered entities")
	}

	rows, err := r.db.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "execute filtered query")
	}
	defer rows.Close()

	entities := make([]domain.Entity, 0)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "scan entity row")
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "iterate entity rows")
	}

	return entities, int(total), nil
}

type filteredQuery struct {
	sql       string
	args      []any
	countSQL  string
	countArgs []any
}

func buildFilteredQuery(encoder *predicate.SQLEncoder, entityType string, expr predicate.Expression, limit, offset int) filteredQuery {
	args := []any{entityType}
	where := "lower(e.entity_type) = lower($1)"

	if expr != nil && !predicate.IsTrue(expr) {
		clause, exprArgs := encoder.EncodeFrom(expr, len(args))
		where += " AND (" + clause + ")"
		args = append(args, exprArgs...)
	}

	from := "FROM entities e WHERE " + where
	countArgs := append([]any{}, args...)

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	return filteredQuery{
		sql: fmt.Sprintf("SELECT %s %s ORDER BY e.created_at, e.id LIMIT $%d OFFSET $%d",
			entityColumns, from, len(args)-1, len(args)),
		args:      args,
		countSQL:  "SELECT COUNT(*) " + from,
		countArgs: countArgs,
	}
}

func scanEntity(row pgx.Row) (domain.Entity, error) {
	var (
		id         uuid.UUID
		entityType string
		properties []byte
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&id, &entityType, &properties, &createdAt, &updatedAt); err != nil {
		return domain.Entity{}, err
	}
	return buildEntity(id, entityType, properties, createdAt, updatedAt)
}

func buildEntity(
	id uuid.UUID,
	entityType string,
	propertiesJSON json.RawMessage,
	createdAt time.Time,
	updatedAt time.Time,
) (domain.Entity, error) {
	properties, err := domain.FromJSONBProperties(propertiesJSON)
	if err != nil {
		return domain.Entity{}, errors.Wrapf(err, "failed to decode properties for entity %s", id)
	}

	return domain.Entity{
		ID:         id,
		EntityType: entityType,
		Properties: properties,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}
