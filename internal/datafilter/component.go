// Package datafilter defines report filter components. A component encodes a
// filter choice as a selection string, describes it for humans and compiles
// it into a predicate bound to a caller supplied parameter. Components are
// stateless and never execute queries.
package datafilter

import (
	"io"
	"strings"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
	"github.com/rpattn/dataview/internal/predicate"
)

// Component is implemented by every filter variant.
type Component interface {
	Key() string
	// AppliesToEntityType is empty for filters usable on every entity type.
	AppliesToEntityType() string
	Section() string
	AttributeValueDefaults() map[string]string

	Title(entityType string) string
	ClientFormatSelection(entityType string) string
	FormatSelection(entityType, selection string) string

	CreateChildControls(entityType, id string) []editor.Control
	RenderControls(w io.Writer, entityType string, controls []editor.Control, r editor.Renderer) error
	GetSelection(entityType string, controls []editor.Control) string
	SetSelection(entityType string, controls []editor.Control, selection string) []editor.Control

	// GetExpression compiles selection. Malformed selections compile to
	// predicate.True().
	GetExpression(entityType string, svc Service, param predicate.Parameter, selection string) predicate.Expression
}

// Service is the data access handle expressions are compiled against. It
// maps entity fields to storage members and must not perform I/O.
type Service interface {
	Member(param predicate.Parameter, entityType, field string) predicate.Member
}

// EntityColumns are the entity fields stored as table columns. Every other
// field is read from the properties document.
var EntityColumns = map[string]string{
	"id":          "id",
	"entitytype":  "entity_type",
	"entity_type": "entity_type",
	"createdat":   "created_at",
	"created_at":  "created_at",
	"updatedat":   "updated_at",
	"updated_at":  "updated_at",
}

// EntityService resolves fields against the entities table.
type EntityService struct{}

func (EntityService) Member(param predicate.Parameter, _ string, field string) predicate.Member {
	if column, ok := EntityColumns[strings.ToLower(field)]; ok {
		return param.Column(column)
	}
	return param.Property(field)
}

func serviceOrDefault(svc Service) Service {
	if svc == nil {
		return EntityService{}
	}
	return svc
}

// TitleResolver supplies display titles for entity fields. An empty result
// means the field is unknown.
type TitleResolver interface {
	FieldTitle(entityType, field string) string
}

// AttributeTitles resolves titles from attribute definitions.
type AttributeTitles []domain.AttributeDefinition

func (a AttributeTitles) FieldTitle(entityType, field string) string {
	for _, def := range a {
		if strings.EqualFold(def.Key, field) && def.AppliesTo(entityType) {
			return def.Name
		}
	}
	return ""
}
