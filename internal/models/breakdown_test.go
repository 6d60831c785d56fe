package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMergeBreakdownNilPartialYieldsFallback(t *testing.T) {
	fallback := PriceBreakdown{BasePrice: 100000, AddonTotal: 600, PriceTotal: 100600}
	selection := Selection{SurfaceFloor: uuid.New()}

	merged := MergeBreakdown(nil, fallback, selection)

	assert.Equal(t, 100600.0, merged.PriceTotal)
	assert.Equal(t, selection, merged.Selections)
}

func TestMergeBreakdownPartialFieldsWin(t *testing.T) {
	total := 101000.0
	savedAt := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	partial := &PartialBreakdown{
		PriceTotal: &total,
		SavedAt:    &savedAt,
	}
	fallback := PriceBreakdown{
		BasePrice:  100000,
		AddonTotal: 600,
		PriceTotal: 100600,
		LineItems:  []PriceLineItem{{Category: SurfaceFloor, Subtotal: 600}},
	}

	merged := MergeBreakdown(partial, fallback, nil)

	// Present fields come from the server row, missing ones from the local
	// computation.
	assert.Equal(t, 101000.0, merged.PriceTotal)
	assert.Equal(t, 100000.0, merged.BasePrice)
	assert.Equal(t, 600.0, merged.AddonTotal)
	assert.Equal(t, &savedAt, merged.SavedAt)
	assert.Len(t, merged.LineItems, 1)
}

func TestMergeBreakdownEmptyLineItemsKeepFallback(t *testing.T) {
	fallback := PriceBreakdown{
		LineItems: []PriceLineItem{{Category: SurfaceWall, Subtotal: 250}},
	}

	merged := MergeBreakdown(&PartialBreakdown{}, fallback, nil)

	assert.Equal(t, fallback.LineItems, merged.LineItems)
}

func TestSelectionClone(t *testing.T) {
	original := Selection{SurfaceFloor: uuid.New()}
	clone := original.Clone()
	clone[SurfaceWall] = uuid.New()

	assert.NotContains(t, original, SurfaceWall)
	assert.Equal(t, original[SurfaceFloor], clone[SurfaceFloor])
}

func TestSavedSelectionPartial(t *testing.T) {
	clientPrice := 100500.0
	row := &SavedSelection{
		BasePrice:   100000,
		AddonTotal:  600,
		PriceTotal:  100600,
		ClientPrice: &clientPrice,
		SavedAt:     time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}

	partial := row.Partial()

	assert.Equal(t, 100600.0, *partial.PriceTotal)
	assert.Equal(t, &clientPrice, partial.ClientPrice)
	assert.Equal(t, row.SavedAt, *partial.SavedAt)

	var nilRow *SavedSelection
	assert.Nil(t, nilRow.Partial())
}
