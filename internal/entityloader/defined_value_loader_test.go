package entityloader

import (
	"context"
	"testing"
	"time"

	"github.com/rpattn/dataview/internal/domain"
)

type fakeDefinedValues struct {
	typeCalls  int
	valueCalls map[int]int
}

func (f *fakeDefinedValues) ListDefinedTypes(context.Context) ([]domain.DefinedType, error) {
	f.typeCalls++
	return []domain.DefinedType{{ID: 4, Name: "Phone Type"}}, nil
}

func (f *fakeDefinedValues) ListByDefinedType(_ context.Context, id int) ([]domain.DefinedValue, error) {
	f.valueCalls[id]++
	return []domain.DefinedValue{{ID: 10, DefinedTypeID: id, Value: "Mobile"}}, nil
}

func TestDefinedValueLoaderCachesPerType(t *testing.T) {
	repo := &fakeDefinedValues{valueCalls: map[int]int{}}
	l := NewDefinedValueLoader(repo, 8, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.ListDefinedTypes(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		values, err := l.ListByDefinedType(ctx, 4)
		if err != nil || len(values) != 1 || values[0].Value != "Mobile" {
			t.Fatalf("unexpected values %+v, %v", values, err)
		}
	}
	if _, err := l.ListByDefinedType(ctx, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.typeCalls != 1 || repo.valueCalls[4] != 1 || repo.valueCalls[5] != 1 {
		t.Fatalf("unexpected repository calls types=%d values=%v", repo.typeCalls, repo.valueCalls)
	}
}
