package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"viewer-service/internal/geometry"
	"viewer-service/internal/services"
)

const InvalidUuidError = "invalid UUID"
const SessionNotFoundError = "viewer session not found"
const UnitNotFoundError = "unit not found"

// ViewerHandler defines handlers for viewer sessions: creation, material
// application, save and history preview.
type ViewerHandler struct {
	Service *services.CustomizationService
}

// NewViewerHandler creates a new ViewerHandler with the given CustomizationService.
func NewViewerHandler(service *services.CustomizationService) *ViewerHandler {
	return &ViewerHandler{Service: service}
}

type createSessionRequest struct {
	UnitID string          `json:"unitId"`
	Scene  *geometry.Scene `json:"scene,omitempty"`
}

type applyMaterialRequest struct {
	Category string `json:"category"`
	OptionID string `json:"optionId"`
}

type saveRequest struct {
	ClientPrice *float64 `json:"clientPrice,omitempty"`
}

// buyerID reads the optional X-Buyer-ID header. A present but malformed
// header is an error; an absent one means an anonymous viewer.
func buyerID(c *fiber.Ctx) (*uuid.UUID, error) {
	header := c.Get("X-Buyer-ID")
	if header == "" {
		return nil, nil
	}
	id, err := uuid.Parse(header)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CreateSession handles POST /api/viewer/sessions to open a viewer session.
// @Summary Open a viewer session for a unit
// @Description Classifies the unit's scene, resolves its material restrictions and returns the initial selection state. An optional inline scene overrides the stored one.
// @Tags viewer
// @Accept json
// @Produce json
// @Param X-Buyer-ID header string false "Buyer ID for saved-selection hydration"
// @Param request body createSessionRequest true "Unit ID and optional inline scene"
// @Success 201 {object} services.SessionView "Session created"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Unit not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/viewer/sessions [post]
func (h *ViewerHandler) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Failed to parse session request: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid request body",
		})
	}

	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		log.Printf("Invalid unit UUID: %s - Error: %v", req.UnitID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	buyer, err := buyerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid X-Buyer-ID header",
		})
	}

	log.Printf("Creating viewer session - Unit: %s, Buyer: %v, IP: %s", unitID, buyer, c.IP())

	view, err := h.Service.CreateSession(c.Context(), unitID, buyer, req.Scene)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": UnitNotFoundError,
			})
		}
		if errors.Is(err, services.ErrSceneRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		}
		log.Printf("Error creating session for unit %s: %v", unitID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}

	log.Printf("Created viewer session %s for unit %s", view.SessionID, unitID)
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetSession handles GET /api/viewer/sessions/:id to read session state.
// @Summary Get viewer session state
// @Description Returns the current selection, breakdown, staleness and history of a session
// @Tags viewer
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionView "Session state"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /api/viewer/sessions/{id} [get]
func (h *ViewerHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	view, err := h.Service.GetSession(sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": SessionNotFoundError,
		})
	}
	return c.JSON(view)
}

// ApplyMaterial handles POST /api/viewer/sessions/:id/materials.
// @Summary Apply a material to a surface category
// @Description Validates the option against the unit whitelist and restrictions, recomputes the price preview and returns the mesh handles to retexture
// @Tags viewer
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body applyMaterialRequest true "Surface category and option ID"
// @Success 200 {object} services.ApplyMaterialResult "Material applied"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Session or option not found"
// @Failure 422 {object} map[string]interface{} "Material not permitted for this surface"
// @Router /api/viewer/sessions/{id}/materials [post]
func (h *ViewerHandler) ApplyMaterial(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	var req applyMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid request body",
		})
	}

	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	result, err := h.Service.ApplyMaterial(sessionID, req.Category, optionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": SessionNotFoundError,
			})
		case errors.Is(err, services.ErrUnknownCategory):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		case errors.Is(err, services.ErrOptionNotInWhitelist):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		case errors.Is(err, services.ErrMaterialNotPermitted):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		default:
			log.Printf("Error applying material in session %s: %v", sessionID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		}
	}

	log.Printf("Applied material %s to %s in session %s (total %.2f)",
		req.OptionID, result.Category, sessionID, result.Breakdown.PriceTotal)
	return c.JSON(result)
}

// SaveSelection handles POST /api/viewer/sessions/:id/save.
// @Summary Save the current selection
// @Description Persists the session's selection and price breakdown for the signed-in buyer and returns the authoritative state
// @Tags viewer
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body saveRequest false "Optional client-observed total for drift detection"
// @Success 200 {object} services.SaveResult "Selection saved"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 401 {object} map[string]interface{} "No buyer associated with the session"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/viewer/sessions/{id}/save [post]
func (h *ViewerHandler) SaveSelection(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	var req saveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": "invalid request body",
			})
		}
	}

	result, err := h.Service.Save(c.Context(), sessionID, req.ClientPrice)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": SessionNotFoundError,
			})
		case errors.Is(err, services.ErrBuyerRequired):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		default:
			log.Printf("Error saving selection in session %s: %v", sessionID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": true, "message": "failed to save design",
			})
		}
	}

	return c.JSON(result)
}

// PreviewHistory handles POST /api/viewer/sessions/:id/history/:index/preview.
// @Summary Preview a saved history entry
// @Description Loads a saved breakdown back into the session as an unsaved preview
// @Tags viewer
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "History index, 0 is most recent"
// @Success 200 {object} services.SessionView "Session state with the previewed selection"
// @Failure 400 {object} map[string]interface{} "Invalid session ID or index"
// @Failure 404 {object} map[string]interface{} "Session or history entry not found"
// @Router /api/viewer/sessions/{id}/history/{index}/preview [post]
func (h *ViewerHandler) PreviewHistory(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid history index",
		})
	}

	view, err := h.Service.PreviewHistory(sessionID, index)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": SessionNotFoundError,
			})
		case errors.Is(err, services.ErrHistoryOutOfRange):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": true, "message": err.Error(),
			})
		}
	}

	log.Printf("Previewing history entry %d in session %s", index, sessionID)
	return c.JSON(view)
}

// CloseSession handles DELETE /api/viewer/sessions/:id.
// @Summary Close a viewer session
// @Description Drops the in-memory session; saved selections are unaffected
// @Tags viewer
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{} "Session closed"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Router /api/viewer/sessions/{id} [delete]
func (h *ViewerHandler) CloseSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	h.Service.Store.Delete(sessionID)
	return c.JSON(fiber.Map{"error": false, "message": "session closed"})
}

// GetSavedSelection handles GET /api/selections.
// @Summary Get the latest saved selection for a buyer and unit
// @Description Returns the most recent persisted selection with its bounded history
// @Tags selections
// @Produce json
// @Param X-Buyer-ID header string true "Buyer ID"
// @Param unitId query string true "Unit ID"
// @Success 200 {object} services.SavedSelectionPayload "Saved selection"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 401 {object} map[string]interface{} "Missing buyer header"
// @Failure 404 {object} map[string]interface{} "No saved selection"
// @Router /api/selections [get]
func (h *ViewerHandler) GetSavedSelection(c *fiber.Ctx) error {
	buyer, err := buyerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "invalid X-Buyer-ID header",
		})
	}
	if buyer == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": true, "message": "X-Buyer-ID header is required",
		})
	}

	unitID, err := uuid.Parse(c.Query("unitId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}

	payload, err := h.Service.LoadSaved(*buyer, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": true, "message": "no saved selection for this unit",
			})
		}
		log.Printf("Error loading saved selection for buyer %s unit %s: %v", buyer, unitID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(payload)
}
