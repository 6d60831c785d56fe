package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedSelection is the persisted record of a buyer's finish choices for a
// unit together with the price fields computed at save time. The newest row
// per (buyer, unit) is authoritative; older rows form the saved history.
type SavedSelection struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID         uuid.UUID       `gorm:"type:uuid;index:idx_saved_selections_buyer_unit" json:"buyerId"`
	UnitID          uuid.UUID       `gorm:"type:uuid;index:idx_saved_selections_buyer_unit" json:"unitId"`
	Selections      Selection       `gorm:"serializer:json" json:"selections"`
	BasePrice       float64         `json:"basePrice"`
	AddonTotal      float64         `json:"addonTotal"`
	PriceTotal      float64         `json:"priceTotal"`
	LineItems       []PriceLineItem `gorm:"serializer:json" json:"lineItems"`
	ClientPrice     *float64        `json:"clientPrice,omitempty"`
	PriceDifference *float64        `json:"priceDifference,omitempty"`
	SavedAt         time.Time       `gorm:"index" json:"savedAt"`
}

// Partial converts the stored row into the sparse breakdown shape consumed by
// the reconciler's merge.
func (s *SavedSelection) Partial() *PartialBreakdown {
	if s == nil {
		return nil
	}
	savedAt := s.SavedAt
	base := s.BasePrice
	addon := s.AddonTotal
	total := s.PriceTotal
	return &PartialBreakdown{
		BasePrice:       &base,
		AddonTotal:      &addon,
		PriceTotal:      &total,
		LineItems:       s.LineItems,
		SavedAt:         &savedAt,
		ClientPrice:     s.ClientPrice,
		PriceDifference: s.PriceDifference,
		Selections:      s.Selections,
	}
}
