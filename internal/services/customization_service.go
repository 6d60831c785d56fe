package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"viewer-service/internal/catalog"
	"viewer-service/internal/geometry"
	"viewer-service/internal/metrics"
	"viewer-service/internal/models"
	"viewer-service/internal/pricing"
	"viewer-service/internal/repository"
	"viewer-service/internal/utils"
)

// Sentinel errors surfaced to handlers as user-facing status messages.
var (
	ErrSessionNotFound      = errors.New("viewer session not found")
	ErrUnknownCategory      = errors.New("unknown surface category")
	ErrOptionNotInWhitelist = errors.New("selected option is not in the unit whitelist")
	ErrMaterialNotPermitted = errors.New("selected material is not permitted for this surface")
	ErrBuyerRequired        = errors.New("sign in to save your design")
	ErrHistoryOutOfRange    = errors.New("history entry not found")
	ErrSceneRequired        = errors.New("unit has no scene and none was provided")
)

// SceneLoader yields the traversable mesh list for a stored scene key.
type SceneLoader interface {
	LoadScene(ctx context.Context, sceneKey string) (geometry.Scene, error)
}

// CustomizationService drives the material-customization engine: it builds
// viewer sessions from classified scenes, validates and applies material
// choices, computes preview breakdowns, and reconciles them with persisted
// selections.
type CustomizationService struct {
	Materials    repository.MaterialRepository
	Selections   repository.SelectionRepository
	Scenes       SceneLoader
	Classifier   *geometry.Classifier
	Store        *SessionStore
	HistoryLimit int
	Metrics      *metrics.Metrics
}

// NewCustomizationService creates a new CustomizationService.
func NewCustomizationService(
	materials repository.MaterialRepository,
	selections repository.SelectionRepository,
	scenes SceneLoader,
	classifier *geometry.Classifier,
	store *SessionStore,
	historyLimit int,
	m *metrics.Metrics,
) *CustomizationService {
	return &CustomizationService{
		Materials:    materials,
		Selections:   selections,
		Scenes:       scenes,
		Classifier:   classifier,
		Store:        store,
		HistoryLimit: historyLimit,
		Metrics:      m,
	}
}

// CreateSession builds a viewer session for a unit. The scene may be passed
// inline by the render layer; otherwise it is loaded from storage via the
// unit's scene key. When a buyer is known, any previously saved selection is
// hydrated into the session, with sparse server fields filled from a freshly
// computed local breakdown.
func (s *CustomizationService) CreateSession(ctx context.Context, unitID uuid.UUID, buyerID *uuid.UUID, scene *geometry.Scene) (SessionView, error) {
	unit, err := s.Materials.GetUnit(unitID)
	if err != nil {
		return SessionView{}, errors.Wrap(err, "unit lookup failed")
	}

	whitelist, err := s.Materials.WhitelistForUnit(unitID)
	if err != nil {
		return SessionView{}, errors.Wrap(err, "whitelist lookup failed")
	}

	allowed := s.resolveAllowed(unitID)

	if scene == nil {
		if unit.SceneKey == "" {
			return SessionView{}, ErrSceneRequired
		}
		loaded, err := s.Scenes.LoadScene(ctx, unit.SceneKey)
		if err != nil {
			return SessionView{}, errors.Wrap(err, "scene load failed")
		}
		scene = &loaded
	}

	classifyStart := time.Now()
	classification := s.Classifier.Classify(*scene)
	if s.Metrics != nil {
		s.Metrics.RecordClassifyLatency(float64(time.Since(classifyStart).Microseconds()) / 1000.0)
		counts := make(map[string]int, len(classification.Handles))
		for cat, handles := range classification.Handles {
			counts[string(cat)] = len(handles)
		}
		s.Metrics.RecordClassification(counts, classification.Skipped)
		s.Metrics.IncrementSessionsCreated()
	}
	log.Printf("Classified scene for unit %s: wall=%d floor=%d ceiling=%d skipped=%d",
		unitID,
		len(classification.Handles[models.SurfaceWall]),
		len(classification.Handles[models.SurfaceFloor]),
		len(classification.Handles[models.SurfaceCeiling]),
		classification.Skipped)

	calc := pricing.NewCalculator(whitelist)
	session := &ViewerSession{
		ID:              uuid.New(),
		UnitID:          unitID,
		BuyerID:         buyerID,
		BasePrice:       unit.BasePrice,
		Currency:        unit.Currency,
		Classification:  classification,
		Whitelist:       whitelist,
		Allowed:         allowed,
		CatalogDefaults: mergeDefaults(classification.Defaults, allowed),
		Selection:       models.Selection{},
		calc:            calc,
		CreatedAt:       time.Now(),
		lastAccess:      time.Now(),
	}
	session.Breakdown = s.calculate(session, session.Selection)

	if buyerID != nil {
		s.hydrateSaved(session)
	}

	s.Store.Put(session)
	return session.view(), nil
}

// hydrateSaved merges the most recent persisted selection into a fresh
// session. All failures here are recovered locally: the viewer still opens
// with an unsaved preview.
func (s *CustomizationService) hydrateSaved(session *ViewerSession) {
	saved, err := s.Selections.LatestSelection(*session.BuyerID, session.UnitID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to load saved selection for buyer %s unit %s: %v", session.BuyerID, session.UnitID, err)
		}
		return
	}

	normalized := normalizeSelection(saved.Selections)
	if len(normalized) == 0 {
		return
	}

	preview := s.calculate(session, normalized)
	session.Selection = normalized
	session.Breakdown = models.MergeBreakdown(saved.Partial(), preview, normalized)
	session.History = s.loadHistory(session, preview)
	session.IsPriceStale = false
	log.Printf("Loaded saved design for buyer %s unit %s (total %.2f)", session.BuyerID, session.UnitID, session.Breakdown.PriceTotal)
}

func (s *CustomizationService) loadHistory(session *ViewerSession, fallback models.PriceBreakdown) []models.PriceBreakdown {
	rows, err := s.Selections.RecentSelections(*session.BuyerID, session.UnitID, s.HistoryLimit)
	if err != nil {
		log.Printf("Failed to load selection history for buyer %s unit %s: %v", session.BuyerID, session.UnitID, err)
		return nil
	}
	history := make([]models.PriceBreakdown, 0, len(rows))
	for i := range rows {
		row := rows[i]
		history = append(history, models.MergeBreakdown(row.Partial(), fallback, normalizeSelection(row.Selections)))
	}
	return history
}

// GetSession returns the current state of a live session.
func (s *CustomizationService) GetSession(sessionID uuid.UUID) (SessionView, error) {
	session, ok := s.Store.Get(sessionID)
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.view(), nil
}

// ApplyMaterialResult is the render-layer command produced by a successful
// apply: the recomputed preview and the mesh handles to retexture.
type ApplyMaterialResult struct {
	Category     models.SurfaceCategory `json:"category"`
	Option       models.MaterialOption  `json:"option"`
	TilingScale  float64                `json:"tilingScale"`
	Handles      []geometry.Handle      `json:"handles"`
	Breakdown    models.PriceBreakdown  `json:"breakdown"`
	IsPriceStale bool                   `json:"isPriceStale"`
}

// ApplyMaterial validates a buyer's choice against the whitelist and the
// allowed-materials restriction, then recomputes the preview breakdown and
// marks the session stale. Rejections mutate nothing.
func (s *CustomizationService) ApplyMaterial(sessionID uuid.UUID, category string, optionID uuid.UUID) (ApplyMaterialResult, error) {
	session, ok := s.Store.Get(sessionID)
	if !ok {
		return ApplyMaterialResult{}, ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	cat, ok := models.ParseSurfaceCategory(category)
	if !ok {
		s.countApply("unknown_category")
		return ApplyMaterialResult{}, ErrUnknownCategory
	}
	entry, ok := session.calc.Entry(optionID.String())
	if !ok {
		s.countApply("unknown_option")
		return ApplyMaterialResult{}, ErrOptionNotInWhitelist
	}
	if !session.Allowed.Permits(cat, entry.Option) {
		s.countApply("rejected")
		return ApplyMaterialResult{}, ErrMaterialNotPermitted
	}

	next := session.Selection.Clone()
	next[cat] = optionID

	breakdown := s.calculate(session, next)
	// Carry over save metadata from the previous breakdown; only the priced
	// fields are recomputed on edit.
	breakdown.SavedAt = session.Breakdown.SavedAt
	breakdown.ClientPrice = session.Breakdown.ClientPrice
	breakdown.PriceDifference = session.Breakdown.PriceDifference

	session.Selection = next
	session.Breakdown = breakdown
	session.IsPriceStale = true
	session.editGeneration++

	s.countApply("applied")

	tiling := 1.0
	if entry.Option.TilingScale != nil && *entry.Option.TilingScale > 0 {
		tiling = *entry.Option.TilingScale
	}
	return ApplyMaterialResult{
		Category:     cat,
		Option:       entry.Option,
		TilingScale:  tiling,
		Handles:      session.Classification.Handles[cat],
		Breakdown:    breakdown,
		IsPriceStale: true,
	}, nil
}

// SaveResult is the authoritative state after a successful save.
type SaveResult struct {
	Breakdown    models.PriceBreakdown   `json:"breakdown"`
	History      []models.PriceBreakdown `json:"history"`
	IsPriceStale bool                    `json:"isPriceStale"`
}

// Save persists the session's current selection. The breakdown is computed
// synchronously before the write so the persisted row reflects the selection
// at save time. The server-returned row becomes authoritative, with local
// fields as fallback; if the buyer edited again while the write was in
// flight, the response is discarded and the session stays stale.
func (s *CustomizationService) Save(ctx context.Context, sessionID uuid.UUID, clientPrice *float64) (SaveResult, error) {
	session, ok := s.Store.Get(sessionID)
	if !ok {
		return SaveResult{}, ErrSessionNotFound
	}

	session.mu.Lock()
	if session.BuyerID == nil {
		session.mu.Unlock()
		s.countSave("unauthenticated")
		return SaveResult{}, ErrBuyerRequired
	}
	buyerID := *session.BuyerID
	selection := session.Selection.Clone()
	local := s.calculate(session, selection)
	generation := session.editGeneration
	session.mu.Unlock()

	var priceDifference *float64
	if clientPrice != nil {
		diff := utils.Round2(*clientPrice - local.PriceTotal)
		priceDifference = &diff
	}

	row := &models.SavedSelection{
		ID:              uuid.New(),
		BuyerID:         buyerID,
		UnitID:          session.UnitID,
		Selections:      selection,
		BasePrice:       local.BasePrice,
		AddonTotal:      local.AddonTotal,
		PriceTotal:      local.PriceTotal,
		LineItems:       local.LineItems,
		ClientPrice:     clientPrice,
		PriceDifference: priceDifference,
		SavedAt:         time.Now().UTC(),
	}
	if err := s.Selections.SaveSelection(row); err != nil {
		s.countSave("error")
		return SaveResult{}, errors.Wrap(err, "failed to save design")
	}

	merged := models.MergeBreakdown(row.Partial(), local, selection)

	history := s.savedHistory(buyerID, session.UnitID, merged, local, selection)

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.editGeneration != generation {
		// A newer edit superseded this save; keep the preview and staleness.
		s.countSave("superseded")
		log.Printf("Discarding save response for session %s: selection changed while saving", sessionID)
		return SaveResult{Breakdown: merged, History: history, IsPriceStale: true}, nil
	}

	session.Breakdown = merged
	session.History = history
	session.IsPriceStale = false
	s.countSave("success")
	log.Printf("Saved design for buyer %s unit %s (total %s)", buyerID, session.UnitID, utils.FormatPrice(merged.PriceTotal, session.Currency))
	return SaveResult{Breakdown: merged, History: history, IsPriceStale: false}, nil
}

// savedHistory prefers the server-side history; if that read fails, a single
// entry is constructed from the just-saved breakdown so the viewer still has
// something to roll back to.
func (s *CustomizationService) savedHistory(buyerID, unitID uuid.UUID, merged, fallback models.PriceBreakdown, selection models.Selection) []models.PriceBreakdown {
	rows, err := s.Selections.RecentSelections(buyerID, unitID, s.HistoryLimit)
	if err != nil {
		log.Printf("Failed to refresh selection history for buyer %s unit %s: %v", buyerID, unitID, err)
		entry := merged
		entry.Selections = selection
		return []models.PriceBreakdown{entry}
	}
	history := make([]models.PriceBreakdown, 0, len(rows))
	for i := range rows {
		row := rows[i]
		history = append(history, models.MergeBreakdown(row.Partial(), fallback, normalizeSelection(row.Selections)))
	}
	if len(history) > s.HistoryLimit {
		history = history[:s.HistoryLimit]
	}
	return history
}

// PreviewHistory replaces the session's selection and breakdown with a saved
// history entry. The preview itself is unsaved, so the session becomes stale.
func (s *CustomizationService) PreviewHistory(sessionID uuid.UUID, index int) (SessionView, error) {
	session, ok := s.Store.Get(sessionID)
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if index < 0 || index >= len(session.History) {
		return SessionView{}, ErrHistoryOutOfRange
	}
	entry := session.History[index]

	session.Selection = entry.Selections.Clone()
	session.Breakdown = entry
	session.IsPriceStale = true
	session.editGeneration++

	return session.view(), nil
}

// SavedSelectionPayload is the sparse-tolerant saved-selection shape served
// to clients hydrating a viewer.
type SavedSelectionPayload struct {
	Selections      models.Selection          `json:"selections"`
	BasePrice       float64                   `json:"basePrice"`
	AddonTotal      float64                   `json:"addonTotal"`
	PriceTotal      float64                   `json:"priceTotal"`
	LineItems       []models.PriceLineItem    `json:"lineItems"`
	SavedAt         time.Time                 `json:"savedAt"`
	ClientPrice     *float64                  `json:"clientPrice,omitempty"`
	PriceDifference *float64                  `json:"priceDifference,omitempty"`
	History         []models.PartialBreakdown `json:"history"`
}

// LoadSaved returns the latest persisted selection and bounded history for a
// buyer and unit pair.
func (s *CustomizationService) LoadSaved(buyerID, unitID uuid.UUID) (*SavedSelectionPayload, error) {
	latest, err := s.Selections.LatestSelection(buyerID, unitID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Selections.RecentSelections(buyerID, unitID, s.HistoryLimit)
	if err != nil {
		log.Printf("Failed to load selection history for buyer %s unit %s: %v", buyerID, unitID, err)
		rows = nil
	}
	history := make([]models.PartialBreakdown, 0, len(rows))
	for i := range rows {
		history = append(history, *rows[i].Partial())
	}
	return &SavedSelectionPayload{
		Selections:      latest.Selections,
		BasePrice:       latest.BasePrice,
		AddonTotal:      latest.AddonTotal,
		PriceTotal:      latest.PriceTotal,
		LineItems:       latest.LineItems,
		SavedAt:         latest.SavedAt,
		ClientPrice:     latest.ClientPrice,
		PriceDifference: latest.PriceDifference,
		History:         history,
	}, nil
}

// ListMaterials returns the restricted option menu per surface category for a
// unit, without requiring a live session.
func (s *CustomizationService) ListMaterials(unitID uuid.UUID) ([]CategoryOptions, error) {
	whitelist, err := s.Materials.WhitelistForUnit(unitID)
	if err != nil {
		return nil, errors.Wrap(err, "whitelist lookup failed")
	}
	allowed := s.resolveAllowed(unitID)

	out := make([]CategoryOptions, 0, len(models.SurfaceCategories))
	for _, cat := range models.SurfaceCategories {
		options := catalog.FilterWhitelist(whitelist, cat, allowed)
		total := catalog.CountCategory(whitelist, cat)
		hidden := 0
		if len(allowed[cat]) > 0 {
			hidden = total - len(options)
		}
		out = append(out, CategoryOptions{
			Category:     cat,
			Options:      options,
			Total:        total,
			Hidden:       hidden,
			AllowedSlugs: allowed[cat],
		})
	}
	return out, nil
}

// CatalogDefaults returns the assignment-derived allowed slugs per category.
func (s *CustomizationService) CatalogDefaults(unitID uuid.UUID) (map[models.SurfaceCategory][]string, error) {
	if _, err := s.Materials.GetUnit(unitID); err != nil {
		return nil, err
	}
	allowed := s.resolveAllowed(unitID)
	defaults := make(map[models.SurfaceCategory][]string, len(models.SurfaceCategories))
	for _, cat := range models.SurfaceCategories {
		defaults[cat] = allowed[cat]
	}
	return defaults, nil
}

// resolveAllowed loads and resolves the unit's catalog assignment. Missing or
// unreadable assignment data fails open: every category unrestricted.
func (s *CustomizationService) resolveAllowed(unitID uuid.UUID) catalog.AllowedMaterials {
	assignment, err := s.Materials.AssignmentForUnit(unitID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to load catalog assignment for unit %s: %v", unitID, err)
		}
		return catalog.ResolveAllowed(nil)
	}
	return catalog.ResolveAllowed(assignment)
}

// calculate runs the price calculator and counts the computation.
func (s *CustomizationService) calculate(session *ViewerSession, selection models.Selection) models.PriceBreakdown {
	if s.Metrics != nil {
		s.Metrics.IncrementPriceComputations()
	}
	return session.calc.Calculate(session.BasePrice, selection, session.Classification)
}

func (s *CustomizationService) countApply(outcome string) {
	if s.Metrics != nil {
		s.Metrics.IncrementMaterialApplies(outcome)
	}
}

func (s *CustomizationService) countSave(outcome string) {
	if s.Metrics != nil {
		s.Metrics.IncrementSaves(outcome)
	}
}

// normalizeSelection drops entries whose category is not a known surface.
func normalizeSelection(selection models.Selection) models.Selection {
	normalized := models.Selection{}
	for cat, optionID := range selection {
		if parsed, ok := models.ParseSurfaceCategory(string(cat)); ok {
			normalized[parsed] = optionID
		}
	}
	return normalized
}

// mergeDefaults unions the slugs observed in mesh metadata with the
// assignment-derived slugs, preserving first-seen order.
func mergeDefaults(observed map[models.SurfaceCategory][]string, allowed catalog.AllowedMaterials) map[models.SurfaceCategory][]string {
	merged := make(map[models.SurfaceCategory][]string, len(models.SurfaceCategories))
	for _, cat := range models.SurfaceCategories {
		seen := make(map[string]bool)
		var slugs []string
		for _, slug := range observed[cat] {
			if !seen[slug] {
				seen[slug] = true
				slugs = append(slugs, slug)
			}
		}
		for _, slug := range allowed[cat] {
			if !seen[slug] {
				seen[slug] = true
				slugs = append(slugs, slug)
			}
		}
		merged[cat] = slugs
	}
	return merged
}
