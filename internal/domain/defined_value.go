package domain

import "github.com/google/uuid"

// DefinedValue is one entry of an administrator maintained value list
// (a "defined type"), used as a constrained value source by list based field
// types.
type DefinedValue struct {
	ID            int       `json:"id"`
	GUID          uuid.UUID `json:"guid"`
	DefinedTypeID int       `json:"defined_type_id"`
	Value         string    `json:"value"`
	Description   string    `json:"description"`
	Order         int       `json:"order"`
}

// DefinedType is a named list of defined values.
type DefinedType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
