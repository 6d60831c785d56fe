package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"viewer-service/internal/services"
)

// MaterialHandler defines handlers for browsing a unit's material catalog
// outside of a live viewer session.
type MaterialHandler struct {
	Service *services.CustomizationService
}

// NewMaterialHandler creates a new MaterialHandler with the given CustomizationService.
func NewMaterialHandler(service *services.CustomizationService) *MaterialHandler {
	return &MaterialHandler{Service: service}
}

// ListMaterials handles GET /api/units/:unitId/materials.
// @Summary List selectable materials for a unit
// @Description Returns the whitelisted options per surface category after applying the unit's catalog restrictions, with hidden-option counts
// @Tags materials
// @Produce json
// @Param unitId path string true "Unit ID"
// @Success 200 {array} services.CategoryOptions "Options per surface category"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/units/{unitId}/materials [get]
func (h *MaterialHandler) ListMaterials(c *fiber.Ctx) error {
	unitID, err := uuid.Parse(c.Params("unitId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	options, err := h.Service.ListMaterials(unitID)
	if err != nil {
		log.Printf("Error listing materials for unit %s: %v", unitID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(options)
}

// GetCatalogDefaults handles GET /api/units/:unitId/catalog-defaults.
// @Summary Get catalog-assigned material slugs for a unit
// @Description Returns the allowed material identifiers per surface category derived from the unit's catalog assignment
// @Tags materials
// @Produce json
// @Param unitId path string true "Unit ID"
// @Success 200 {object} map[string][]string "Allowed slugs per category"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Unit not found"
// @Router /api/units/{unitId}/catalog-defaults [get]
func (h *MaterialHandler) GetCatalogDefaults(c *fiber.Ctx) error {
	unitID, err := uuid.Parse(c.Params("unitId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	defaults, err := h.Service.CatalogDefaults(unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": UnitNotFoundError,
			})
		}
		log.Printf("Error loading catalog defaults for unit %s: %v", unitID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(defaults)
}
