package handlers

import (
	"github.com/gofiber/fiber/v2"

	"viewer-service/internal/services"
)

// RatesHandler defines handlers for exchange-rate queries used by the price
// display.
type RatesHandler struct {
	Service *services.RatesService
}

// NewRatesHandler creates a new RatesHandler with the given RatesService.
func NewRatesHandler(service *services.RatesService) *RatesHandler {
	return &RatesHandler{Service: service}
}

// GetExchangeRates handles GET /api/exchange-rates.
// @Summary Get ETB-based exchange rates
// @Description Returns the current exchange-rate table with its source (live, cached or fallback) and the supported display currencies
// @Tags rates
// @Produce json
// @Success 200 {object} map[string]interface{} "Rate table"
// @Router /api/exchange-rates [get]
func (h *RatesHandler) GetExchangeRates(c *fiber.Ctx) error {
	table := h.Service.Rates(c.Context())
	return c.JSON(fiber.Map{
		"base":       table.Base,
		"rates":      table.Rates,
		"source":     table.Source,
		"fetchedAt":  table.FetchedAt,
		"currencies": services.SupportedCurrencies,
	})
}
