package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"viewer-service/internal/catalog"
	"viewer-service/internal/geometry"
	"viewer-service/internal/models"
	"viewer-service/internal/pricing"
)

// ViewerSession is the live state of one buyer looking at one unit: the
// classified scene, the resolved restrictions, the current selection and its
// preview breakdown, and the bounded saved history. Source of truth while
// editing is this local state; the authoritative copy lives server-side once
// saved.
type ViewerSession struct {
	ID      uuid.UUID
	UnitID  uuid.UUID
	BuyerID *uuid.UUID

	BasePrice float64
	Currency  string

	Classification  geometry.Classification
	Whitelist       []models.WhitelistEntry
	Allowed         catalog.AllowedMaterials
	CatalogDefaults map[models.SurfaceCategory][]string

	Selection    models.Selection
	Breakdown    models.PriceBreakdown
	History      []models.PriceBreakdown
	IsPriceStale bool

	calc *pricing.Calculator

	// editGeneration advances on every selection change; a save response is
	// discarded when a newer edit happened while the save was in flight.
	editGeneration uint64

	mu         sync.Mutex
	lastAccess time.Time
	CreatedAt  time.Time
}

func (s *ViewerSession) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

func (s *ViewerSession) lastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// CategoryOptions groups the restricted, buyer-visible option list for one
// surface category.
type CategoryOptions struct {
	Category     models.SurfaceCategory  `json:"category"`
	Options      []models.WhitelistEntry `json:"options"`
	Total        int                     `json:"total"`
	Hidden       int                     `json:"hidden"`
	AllowedSlugs []string                `json:"allowedSlugs,omitempty"`
}

// SessionView is the wire representation of a session returned to the render
// layer. Handles reference meshes by scene index; the engine never hands out
// renderer-owned objects.
type SessionView struct {
	SessionID       uuid.UUID                                 `json:"sessionId"`
	UnitID          uuid.UUID                                 `json:"unitId"`
	BasePrice       float64                                   `json:"basePrice"`
	Currency        string                                    `json:"currency"`
	Selections      models.Selection                          `json:"selections"`
	Breakdown       models.PriceBreakdown                     `json:"breakdown"`
	IsPriceStale    bool                                      `json:"isPriceStale"`
	History         []models.PriceBreakdown                   `json:"history"`
	Handles         map[models.SurfaceCategory][]geometry.Handle `json:"handles"`
	CatalogDefaults map[models.SurfaceCategory][]string       `json:"catalogDefaults"`
	Materials       []CategoryOptions                         `json:"materials"`
	SkippedMeshes   int                                       `json:"skippedMeshes"`
}

// view builds the wire representation. Caller holds the session lock.
func (s *ViewerSession) view() SessionView {
	materials := make([]CategoryOptions, 0, len(models.SurfaceCategories))
	for _, cat := range models.SurfaceCategories {
		options := catalog.FilterWhitelist(s.Whitelist, cat, s.Allowed)
		total := catalog.CountCategory(s.Whitelist, cat)
		hidden := 0
		if len(s.Allowed[cat]) > 0 {
			hidden = total - len(options)
		}
		materials = append(materials, CategoryOptions{
			Category:     cat,
			Options:      options,
			Total:        total,
			Hidden:       hidden,
			AllowedSlugs: s.Allowed[cat],
		})
	}
	return SessionView{
		SessionID:       s.ID,
		UnitID:          s.UnitID,
		BasePrice:       s.BasePrice,
		Currency:        s.Currency,
		Selections:      s.Selection.Clone(),
		Breakdown:       s.Breakdown,
		IsPriceStale:    s.IsPriceStale,
		History:         s.History,
		Handles:         s.Classification.Handles,
		CatalogDefaults: s.CatalogDefaults,
		Materials:       materials,
		SkippedMeshes:   s.Classification.Skipped,
	}
}
