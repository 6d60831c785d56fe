package models

import (
	"github.com/google/uuid"
)

// MaterialOption is a catalog entry for a finish material. Immutable reference
// data loaded from the backend catalog.
type MaterialOption struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Unit            string    `json:"unit"`
	Price           float64   `json:"price"`
	BaseColorHex    *string   `json:"baseColorHex,omitempty"`
	AlbedoURL       *string   `json:"albedoUrl,omitempty"`
	NormalURL       *string   `json:"normalUrl,omitempty"`
	RoughnessMapURL *string   `json:"roughnessMapUrl,omitempty"`
	MetallicMapURL  *string   `json:"metallicMapUrl,omitempty"`
	AOMapURL        *string   `json:"aoMapUrl,omitempty"`
	TilingScale     *float64  `json:"tilingScale,omitempty"`
}

// WhitelistEntry associates a MaterialOption with a property unit, optionally
// overriding the catalog price. The whitelist for a unit is the buyer-visible
// menu before allowed-materials filtering.
type WhitelistEntry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID        uuid.UUID      `gorm:"type:uuid;index" json:"unitId"`
	OptionID      uuid.UUID      `gorm:"type:uuid" json:"optionId"`
	OverridePrice *float64       `json:"overridePrice"`
	Option        MaterialOption `gorm:"foreignKey:OptionID" json:"option"`
}

// UnitPrice returns the effective price per billable unit for this entry.
func (w WhitelistEntry) UnitPrice() float64 {
	if w.OverridePrice != nil {
		return *w.OverridePrice
	}
	return w.Option.Price
}
