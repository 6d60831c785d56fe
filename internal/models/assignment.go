package models

import (
	"github.com/google/uuid"
)

// RoomSurfaceMaterial names the catalog slug assigned to one surface of a room.
type RoomSurfaceMaterial struct {
	Material string `json:"material"`
}

// RoomAssignment carries the designer-authored materials for a single room.
type RoomAssignment struct {
	Name      string                         `json:"name,omitempty"`
	RoomType  string                         `json:"roomType,omitempty"`
	Materials map[string]RoomSurfaceMaterial `json:"materials,omitempty"`
}

// CatalogAssignment is the designer-authored default material map for a unit.
// It restricts buyer choice per surface category; it never prices anything.
type CatalogAssignment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID          uuid.UUID         `gorm:"type:uuid;index" json:"unitId"`
	Style           string            `json:"style,omitempty"`
	SurfaceDefaults map[string]string `gorm:"serializer:json" json:"surfaceDefaults,omitempty"`
	Rooms           []RoomAssignment  `gorm:"serializer:json" json:"rooms,omitempty"`
}
