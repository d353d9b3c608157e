package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entity is a record of some entity type carrying its attribute values in a
// JSONB properties document.
type Entity struct {
	ID         uuid.UUID      `json:"id"`
	EntityType string         `json:"entity_type"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewEntity creates a new entity with immutable pattern
func NewEntity(entityType string, properties map[string]any) Entity {
	now := time.Now()
	return Entity{
		ID:         uuid.New(),
		EntityType: entityType,
		Properties: copyProperties(properties),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// WithProperty returns a new entity with an added/updated property
func (e Entity) WithProperty(key string, value any) Entity {
	newProperties := copyProperties(e.Properties)
	newProperties[key] = value

	return Entity{
		ID:         e.ID,
		EntityType: e.EntityType,
		Properties: newProperties,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  time.Now(),
	}
}

// AttributeValue returns the persisted string form of an attribute. Missing
// and null values are reported as "".
func (e Entity) AttributeValue(key string) string {
	value, ok := e.Properties[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}

// GetPropertiesAsJSONB returns the properties as JSONB for database storage
func (e Entity) GetPropertiesAsJSONB() (json.RawMessage, error) {
	if e.Properties == nil {
		return json.Marshal(map[string]any{})
	}
	return json.Marshal(e.Properties)
}

// FromJSONBProperties creates properties map from JSONB data
func FromJSONBProperties(propertiesJSON json.RawMessage) (map[string]any, error) {
	properties := map[string]any{}
	if len(propertiesJSON) == 0 {
		return properties, nil
	}
	err := json.Unmarshal(propertiesJSON, &properties)
	return properties, err
}

// copyProperties creates a shallow copy of the properties map
func copyProperties(properties map[string]any) map[string]any {
	newProperties := make(map[string]any, len(properties))
	for k, v := range properties {
		newProperties[k] = v
	}
	return newProperties
}
