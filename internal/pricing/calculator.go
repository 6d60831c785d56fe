package pricing

import (
	"viewer-service/internal/geometry"
	"viewer-service/internal/models"
	"viewer-service/internal/utils"
)

// Calculator produces price breakdowns from a whitelist and a classified
// scene. For fixed geometry, whitelist and selection the output is fully
// deterministic.
type Calculator struct {
	whitelist []models.WhitelistEntry
	index     map[string]models.WhitelistEntry
}

// NewCalculator builds a calculator over the unit's whitelist.
func NewCalculator(whitelist []models.WhitelistEntry) *Calculator {
	index := make(map[string]models.WhitelistEntry, len(whitelist))
	for _, entry := range whitelist {
		index[entry.OptionID.String()] = entry
	}
	return &Calculator{whitelist: whitelist, index: index}
}

// Entry looks up a whitelist entry by option ID.
func (c *Calculator) Entry(optionID string) (models.WhitelistEntry, bool) {
	entry, ok := c.index[optionID]
	return entry, ok
}

// Calculate computes the full breakdown for a selection. Categories whose
// selected option is no longer in the whitelist are skipped silently: no
// charge, no line item. Every aggregation step rounds to 2 decimals.
func (c *Calculator) Calculate(basePrice float64, selection models.Selection, cl geometry.Classification) models.PriceBreakdown {
	var lineItems []models.PriceLineItem
	var addonTotal float64

	for _, category := range models.SurfaceCategories {
		optionID, ok := selection[category]
		if !ok {
			continue
		}
		entry, ok := c.index[optionID.String()]
		if !ok {
			continue
		}
		unitPrice := entry.UnitPrice()
		quantity := cl.Quantity(category)
		subtotal := utils.Round2(unitPrice * quantity)
		addonTotal += subtotal
		lineItems = append(lineItems, models.PriceLineItem{
			Category:   category,
			OptionID:   entry.OptionID,
			OptionName: entry.Option.Name,
			UnitPrice:  unitPrice,
			Quantity:   quantity,
			Subtotal:   subtotal,
		})
	}

	addonTotal = utils.Round2(addonTotal)
	return models.PriceBreakdown{
		BasePrice:  basePrice,
		AddonTotal: addonTotal,
		PriceTotal: utils.Round2(basePrice + addonTotal),
		LineItems:  lineItems,
		Selections: selection.Clone(),
	}
}
