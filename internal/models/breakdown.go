package models

import (
	"time"

	"github.com/google/uuid"
)

// Selection maps a surface category to the chosen material option. May be
// partial: an unset category keeps the base model material.
type Selection map[SurfaceCategory]uuid.UUID

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// PriceLineItem is one priced row in a breakdown.
type PriceLineItem struct {
	Category   SurfaceCategory `json:"category"`
	OptionID   uuid.UUID       `json:"optionId"`
	OptionName string          `json:"optionName"`
	UnitPrice  float64         `json:"unitPrice"`
	Quantity   float64         `json:"quantity"`
	Subtotal   float64         `json:"subtotal"`
}

// PriceBreakdown is a fully computed cost breakdown for a unit plus its
// finish upgrades. Invariant: PriceTotal == round2(BasePrice + AddonTotal).
type PriceBreakdown struct {
	BasePrice       float64         `json:"basePrice"`
	AddonTotal      float64         `json:"addonTotal"`
	PriceTotal      float64         `json:"priceTotal"`
	LineItems       []PriceLineItem `json:"lineItems"`
	SavedAt         *time.Time      `json:"savedAt,omitempty"`
	ClientPrice     *float64        `json:"clientPrice,omitempty"`
	PriceDifference *float64        `json:"priceDifference,omitempty"`
	Selections      Selection       `json:"selections,omitempty"`
}

// PartialBreakdown is the sparse-tolerant shape of a server-persisted
// breakdown. Any field may be absent; MergeBreakdown fills the gaps from a
// locally computed fallback.
type PartialBreakdown struct {
	BasePrice       *float64        `json:"basePrice,omitempty"`
	AddonTotal      *float64        `json:"addonTotal,omitempty"`
	PriceTotal      *float64        `json:"priceTotal,omitempty"`
	LineItems       []PriceLineItem `json:"lineItems,omitempty"`
	SavedAt         *time.Time      `json:"savedAt,omitempty"`
	ClientPrice     *float64        `json:"clientPrice,omitempty"`
	PriceDifference *float64        `json:"priceDifference,omitempty"`
	Selections      Selection       `json:"selections,omitempty"`
}

// MergeBreakdown combines a possibly partial persisted breakdown with a
// locally computed fallback. Total over both variants: a nil partial yields
// the fallback with the given selections attached.
func MergeBreakdown(partial *PartialBreakdown, fallback PriceBreakdown, selections Selection) PriceBreakdown {
	merged := PriceBreakdown{
		BasePrice:       fallback.BasePrice,
		AddonTotal:      fallback.AddonTotal,
		PriceTotal:      fallback.PriceTotal,
		LineItems:       fallback.LineItems,
		SavedAt:         fallback.SavedAt,
		ClientPrice:     fallback.ClientPrice,
		PriceDifference: fallback.PriceDifference,
		Selections:      selections,
	}
	if partial == nil {
		return merged
	}
	if partial.BasePrice != nil {
		merged.BasePrice = *partial.BasePrice
	}
	if partial.AddonTotal != nil {
		merged.AddonTotal = *partial.AddonTotal
	}
	if partial.PriceTotal != nil {
		merged.PriceTotal = *partial.PriceTotal
	}
	if len(partial.LineItems) > 0 {
		merged.LineItems = partial.LineItems
	}
	if partial.SavedAt != nil {
		merged.SavedAt = partial.SavedAt
	}
	if partial.ClientPrice != nil {
		merged.ClientPrice = partial.ClientPrice
	}
	if partial.PriceDifference != nil {
		merged.PriceDifference = partial.PriceDifference
	}
	return merged
}
