package entityloader

import (
	"context"
	"strconv"
	"time"

	"github.com/rpattn/dataview/internal/cache"
	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
	"github.com/rpattn/dataview/internal/repository"
)

var _ fieldtype.DefinedValueSource = (*DefinedValueLoader)(nil)

// DefinedValueLoader caches defined types and their values for the key value
// list field type.
type DefinedValueLoader struct {
	repo   repository.DefinedValueRepository
	types  *cache.Cache[[]domain.DefinedType]
	values *cache.Cache[[]domain.DefinedValue]
}

func NewDefinedValueLoader(repo repository.DefinedValueRepository, size int, ttl time.Duration) *DefinedValueLoader {
	return &DefinedValueLoader{
		repo:   repo,
		types:  cache.New[[]domain.DefinedType]("definedtype", 1, ttl),
		values: cache.New[[]domain.DefinedValue]("definedvalue", size, ttl),
	}
}

func (l *DefinedValueLoader) ListDefinedTypes(ctx context.Context) ([]domain.DefinedType, error) {
	if types, ok := l.types.Get("all", ""); ok {
		return types, nil
	}
	types, err := l.repo.ListDefinedTypes(ctx)
	if err != nil {
		return nil, err
	}
	l.types.Set("all", "", types)
	return types, nil
}

func (l *DefinedValueLoader) ListByDefinedType(ctx context.Context, definedTypeID int) ([]domain.DefinedValue, error) {
	key := strconv.Itoa(definedTypeID)
	if values, ok := l.values.Get("type", key); ok {
		return values, nil
	}
	values, err := l.repo.ListByDefinedType(ctx, definedTypeID)
	if err != nil {
		return nil, err
	}
	l.values.Set("type", key, values)
	return values, nil
}
