// Package app assembles the field type and filter registries from
// configuration. Both the server and the CLI start from Build.
package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/dataview/internal/config"
	"github.com/rpattn/dataview/internal/datafilter"
	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/fieldtype"
	"github.com/rpattn/dataview/internal/schema/validator"
)

// Resolvers are the lookup capabilities handed to field types.
type Resolvers struct {
	BinaryFiles   fieldtype.BinaryFileResolver
	DefinedValues fieldtype.DefinedValueSource
}

// Runtime holds the registries built from configuration.
type Runtime struct {
	FieldTypes *fieldtype.Registry
	Filters    *datafilter.Registry
	Attributes []domain.AttributeDefinition
}

// Build validates the configured attributes and registers the field types
// and filters. Every filterable attribute gets an attribute filter in
// addition to the configured filter definitions unless a configured filter
// already uses its key.
func Build(cfg config.Config, r Resolvers) (*Runtime, error) {
	if r.BinaryFiles == nil {
		r.BinaryFiles = NoBinaryFiles{}
	}

	types, err := fieldtype.NewRegistry(fieldtype.Defaults(fieldtype.Dependencies{
		BinaryFiles:   r.BinaryFiles,
		DefinedValues: r.DefinedValues,
		ListSources:   cfg.ListSources,
	})...)
	if err != nil {
		return nil, errors.Wrap(err, "register field types")
	}

	if err := validator.ValidateAttributes(cfg.Attributes, types); err != nil {
		return nil, errors.Wrap(err, "validate attributes")
	}

	configured, err := datafilter.FromDefinitions(cfg.Filters, datafilter.Dependencies{
		FieldTypes: types,
		Attributes: cfg.Attributes,
		Titles:     datafilter.AttributeTitles(cfg.Attributes),
	})
	if err != nil {
		return nil, errors.Wrap(err, "build configured filters")
	}

	derived, err := datafilter.AttributeFilters(cfg.Attributes, types)
	if err != nil {
		return nil, errors.Wrap(err, "build attribute filters")
	}

	components := configured
	for _, c := range derived {
		if !hasKey(configured, c.Key()) {
			components = append(components, c)
		}
	}

	filters, err := datafilter.NewRegistry(components...)
	if err != nil {
		return nil, errors.Wrap(err, "register filters")
	}

	logrus.WithFields(logrus.Fields{
		"fieldTypes": len(types.Descriptors()),
		"filters":    len(filters.Components()),
		"attributes": len(cfg.Attributes),
	}).Info("Registries built")

	return &Runtime{FieldTypes: types, Filters: filters, Attributes: cfg.Attributes}, nil
}

func hasKey(components []datafilter.Component, key string) bool {
	for _, c := range components {
		if c.Key() == key {
			return true
		}
	}
	return false
}

// NoBinaryFiles resolves nothing. It keeps the binary file field type
// registered when no database is available; its values then format as "".
type NoBinaryFiles struct{}

func (NoBinaryFiles) GetBinaryFile(context.Context, int) (*domain.BinaryFile, error) {
	return nil, nil
}

func (NoBinaryFiles) GetBinaryFileByGUID(context.Context, uuid.UUID) (*domain.BinaryFile, error) {
	return nil, nil
}

func (NoBinaryFiles) ListBinaryFileTypes(context.Context) ([]domain.BinaryFileType, error) {
	return nil, nil
}
