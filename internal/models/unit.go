package models

import (
	"time"

	"github.com/google/uuid"
)

// ListingUnit is the slice of a marketplace unit the customization engine
// needs: the base price the breakdown starts from and the storage key of the
// converted scene produced by the external pipeline.
type ListingUnit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"type:uuid;index" json:"listingId"`
	Title     string    `json:"title"`
	BasePrice float64   `json:"basePrice"`
	Currency  string    `json:"currency"`
	SceneKey  string    `json:"sceneKey"`
	CreatedAt time.Time `json:"createdAt"`
}
