package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"viewer-service/internal/geometry"
	"viewer-service/internal/models"
)

type fakeMaterialRepo struct {
	unit       *models.ListingUnit
	whitelist  []models.WhitelistEntry
	assignment *models.CatalogAssignment
}

func (f *fakeMaterialRepo) GetUnit(id uuid.UUID) (*models.ListingUnit, error) {
	if f.unit == nil || f.unit.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.unit, nil
}

func (f *fakeMaterialRepo) WhitelistForUnit(unitID uuid.UUID) ([]models.WhitelistEntry, error) {
	return f.whitelist, nil
}

func (f *fakeMaterialRepo) AssignmentForUnit(unitID uuid.UUID) (*models.CatalogAssignment, error) {
	if f.assignment == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.assignment, nil
}

type fakeSelectionRepo struct {
	rows   []models.SavedSelection
	onSave func()
}

func (f *fakeSelectionRepo) SaveSelection(selection *models.SavedSelection) error {
	if f.onSave != nil {
		f.onSave()
	}
	// Most recent first, the order the real repo queries in.
	f.rows = append([]models.SavedSelection{*selection}, f.rows...)
	return nil
}

func (f *fakeSelectionRepo) LatestSelection(buyerID, unitID uuid.UUID) (*models.SavedSelection, error) {
	for i := range f.rows {
		if f.rows[i].BuyerID == buyerID && f.rows[i].UnitID == unitID {
			return &f.rows[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSelectionRepo) RecentSelections(buyerID, unitID uuid.UUID, limit int) ([]models.SavedSelection, error) {
	var out []models.SavedSelection
	for _, row := range f.rows {
		if row.BuyerID == buyerID && row.UnitID == unitID {
			out = append(out, row)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeSceneLoader struct {
	scene geometry.Scene
}

func (f *fakeSceneLoader) LoadScene(ctx context.Context, sceneKey string) (geometry.Scene, error) {
	return f.scene, nil
}

func testScene() geometry.Scene {
	return geometry.Scene{Meshes: []geometry.Mesh{
		{Name: "floor", Bounds: &geometry.Box{Max: geometry.Vec3{X: 4, Y: 3, Z: 0.1}}},
		{Name: "wall", Bounds: &geometry.Box{Max: geometry.Vec3{X: 3, Y: 0.15, Z: 2.5}}},
	}}
}

type fixture struct {
	svc        *CustomizationService
	materials  *fakeMaterialRepo
	selections *fakeSelectionRepo
	unitID     uuid.UUID
	floor      models.WhitelistEntry
	wall       models.WhitelistEntry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	unitID := uuid.New()
	floor := models.WhitelistEntry{
		ID:       uuid.New(),
		UnitID:   unitID,
		OptionID: uuid.New(),
		Option:   models.MaterialOption{ID: uuid.New(), Name: "Oak Parquet", Category: "floor", Price: 50},
	}
	wall := models.WhitelistEntry{
		ID:       uuid.New(),
		UnitID:   unitID,
		OptionID: uuid.New(),
		Option:   models.MaterialOption{ID: uuid.New(), Name: "Beige Paint", Category: "wall", Price: 12},
	}
	materials := &fakeMaterialRepo{
		unit: &models.ListingUnit{
			ID:        unitID,
			Title:     "Unit 4B",
			BasePrice: 100000,
			Currency:  "ETB",
			SceneKey:  "units/4b/scene.json",
		},
		whitelist: []models.WhitelistEntry{floor, wall},
	}
	selections := &fakeSelectionRepo{}
	svc := NewCustomizationService(
		materials,
		selections,
		&fakeSceneLoader{scene: testScene()},
		geometry.NewClassifier(0, 0),
		NewSessionStore(time.Hour, 100, nil),
		5,
		nil,
	)
	return &fixture{svc: svc, materials: materials, selections: selections, unitID: unitID, floor: floor, wall: wall}
}

func TestCreateSessionInitialState(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.CreateSession(context.Background(), f.unitID, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, f.unitID, view.UnitID)
	assert.Equal(t, 100000.0, view.Breakdown.PriceTotal)
	assert.Empty(t, view.Selections)
	assert.False(t, view.IsPriceStale)
	assert.Len(t, view.Handles[models.SurfaceFloor], 1)
	assert.Len(t, view.Handles[models.SurfaceWall], 1)
	assert.Equal(t, 0, view.SkippedMeshes)
}

func TestCreateSessionUnknownUnit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateSession(context.Background(), uuid.New(), nil, nil)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateSessionHydratesSavedSelection(t *testing.T) {
	f := newFixture(t)
	buyer := uuid.New()
	savedAt := time.Now().Add(-time.Hour)
	f.selections.rows = []models.SavedSelection{{
		ID:         uuid.New(),
		BuyerID:    buyer,
		UnitID:     f.unitID,
		Selections: models.Selection{models.SurfaceFloor: f.floor.OptionID},
		BasePrice:  100000,
		AddonTotal: 600,
		PriceTotal: 100600,
		SavedAt:    savedAt,
	}}

	view, err := f.svc.CreateSession(context.Background(), f.unitID, &buyer, nil)
	require.NoError(t, err)

	assert.Equal(t, f.floor.OptionID, view.Selections[models.SurfaceFloor])
	assert.Equal(t, 100600.0, view.Breakdown.PriceTotal)
	require.NotNil(t, view.Breakdown.SavedAt)
	assert.False(t, view.IsPriceStale)
	assert.Len(t, view.History, 1)
}

func TestApplyMaterialRecomputesAndMarksStale(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.CreateSession(context.Background(), f.unitID, nil, nil)
	require.NoError(t, err)

	result, err := f.svc.ApplyMaterial(view.SessionID, "floor", f.floor.OptionID)
	require.NoError(t, err)

	// 12 m2 of floor at 50 per m2 on top of the base price.
	assert.Equal(t, 100600.0, result.Breakdown.PriceTotal)
	assert.True(t, result.IsPriceStale)
	assert.Equal(t, []geometry.Handle{0}, result.Handles)
	assert.Equal(t, "Oak Parquet", result.Option.Name)

	state, err := f.svc.GetSession(view.SessionID)
	require.NoError(t, err)
	assert.True(t, state.IsPriceStale)
	assert.Equal(t, f.floor.OptionID, state.Selections[models.SurfaceFloor])
}

func TestApplyMaterialRejectionsMutateNothing(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.CreateSession(context.Background(), f.unitID, nil, nil)
	require.NoError(t, err)

	_, err = f.svc.ApplyMaterial(view.SessionID, "roof", f.floor.OptionID)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = f.svc.ApplyMaterial(view.SessionID, "floor", uuid.New())
	assert.ErrorIs(t, err, ErrOptionNotInWhitelist)

	state, err := f.svc.GetSession(view.SessionID)
	require.NoError(t, err)
	assert.Empty(t, state.Selections)
	assert.False(t, state.IsPriceStale)
}

func TestApplyMaterialHonorsAllowedRestriction(t *testing.T) {
	f := newFixture(t)
	f.materials.assignment = &models.CatalogAssignment{
		UnitID:          f.unitID,
		SurfaceDefaults: map[string]string{"floor": "ceramic_tile"},
	}
	view, err := f.svc.CreateSession(context.Background(), f.unitID, nil, nil)
	require.NoError(t, err)

	_, err = f.svc.ApplyMaterial(view.SessionID, "floor", f.floor.OptionID)
	assert.ErrorIs(t, err, ErrMaterialNotPermitted)

	// The wall category is unrestricted and stays selectable.
	_, err = f.svc.ApplyMaterial(view.SessionID, "wall", f.wall.OptionID)
	assert.NoError(t, err)
}

func TestSaveRequiresBuyer(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.CreateSession(context.Background(), f.unitID, nil, nil)
	require.NoError(t, err)

	_, err = f.svc.Save(context.Background(), view.SessionID, nil)
	assert.ErrorIs(t, err, ErrBuyerRequired)
}

func TestSaveAdoptsServerStateAndClearsStale(t *testing.T) {
	f := newFixture(t)
	buyer := uuid.New()
	view, err := f.svc.CreateSession(context.Background(), f.unitID, &buyer, nil)
	require.NoError(t, err)
	_, err = f.svc.ApplyMaterial(view.SessionID, "floor", f.floor.OptionID)
	require.NoError(t, err)

	clientPrice := 100600.0
	result, err := f.svc.Save(context.Background(), view.SessionID, &clientPrice)
	require.NoError(t, err)

	assert.False(t, result.IsPriceStale)
	assert.Equal(t, 100600.0, result.Breakdown.PriceTotal)
	require.NotNil(t, result.Breakdown.SavedAt)
	require.NotNil(t, result.Breakdown.PriceDifference)
	assert.Equal(t, 0.0, *result.Breakdown.PriceDifference)
	assert.Len(t, result.History, 1)

	state, err := f.svc.GetSession(view.SessionID)
	require.NoError(t, err)
	assert.False(t, state.IsPriceStale)
}

func TestSaveHistoryIsBounded(t *testing.T) {
	f := newFixture(t)
	buyer := uuid.New()
	view, err := f.svc.CreateSession(context.Background(), f.unitID, &buyer, nil)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		_, err = f.svc.ApplyMaterial(view.SessionID, "floor", f.floor.OptionID)
		require.NoError(t, err)
		_, err = f.svc.Save(context.Background(), view.SessionID, nil)
		require.NoError(t, err)
	}

	state, err := f.svc.GetSession(view.SessionID)
	require.NoError(t, err)
	assert.Len(t, state.History, 5)
	assert.Len(t, f.selections.rows, 6)
}

func TestSaveDiscardedWhenEditedDuringPersist(t *testing.T) {
	f := newFixture(t)
	buyer := uuid.New()
	view, err := f.svc.CreateSession(context.Background(), f.unitID, &buyer, nil)
	require.NoError(t, err)
	_, err = f.svc.ApplyMaterial(view.SessionID, "floor", f.floor.OptionID)
	require.NoError(t, err)

	// Simulate a concurrent edit landing while the save is in flight.
	f.selections.onSave = func() {
		f.selections.onSave = nil
		_, err := f.svc.ApplyMaterial(view.SessionID, "wall", f.wall.OptionID)
		require.NoError(t, err)
	}

	result, err := f.svc.Save(context.Background(), view.SessionID, nil)
	require.NoError(t, err)
	assert.True(t, result.IsPriceStale)

	// The session keeps the newer edit, still unsaved.
	state, err := f.svc.GetSession(view.SessionID)
	require.NoError(t, err)
	assert.True(t, state.IsPriceStale)
	assert.Equal(t, f.wall.OptionID, state.Selections[models.SurfaceWall])
}

func TestPreviewHistoryMarksStale(t *testing.T) {
	f := newFixture(t)
	buyer := uuid.New()
	view, err := f.svc.CreateSession(context.Background(), f.unitID, &buyer, nil)
	require.NoError(t, err)
	_, err = f.svc.ApplyMaterial(view.SessionID, "floor", f.floor.OptionID)
	require.NoError(t, err)
	_, err = f.svc.Save(context.Background(), view.SessionID, nil)
	require.NoError(t, err)
	_, err = f.svc.ApplyMaterial(view.SessionID, "wall", f.wall.OptionID)
	require.NoError(t, err)

	preview, err := f.svc.PreviewHistory(view.SessionID, 0)
	require.NoError(t, err)

	assert.True(t, preview.IsPriceStale)
	assert.Equal(t, f.floor.OptionID, preview.Selections[models.SurfaceFloor])
	assert.NotContains(t, preview.Selections, models.SurfaceWall)

	_, err = f.svc.PreviewHistory(view.SessionID, 7)
	assert.ErrorIs(t, err, ErrHistoryOutOfRange)
}

func TestLoadSavedPayload(t *testing.T) {
	f := newFixture(t)
	buyer := uuid.New()
	view, err := f.svc.CreateSession(context.Background(), f.unitID, &buyer, nil)
	require.NoError(t, err)
	_, err = f.svc.ApplyMaterial(view.SessionID, "floor", f.floor.OptionID)
	require.NoError(t, err)
	_, err = f.svc.Save(context.Background(), view.SessionID, nil)
	require.NoError(t, err)

	payload, err := f.svc.LoadSaved(buyer, f.unitID)
	require.NoError(t, err)

	assert.Equal(t, 100600.0, payload.PriceTotal)
	assert.Equal(t, f.floor.OptionID, payload.Selections[models.SurfaceFloor])
	assert.Len(t, payload.History, 1)

	_, err = f.svc.LoadSaved(uuid.New(), f.unitID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListMaterialsCountsHiddenOptions(t *testing.T) {
	f := newFixture(t)
	f.materials.assignment = &models.CatalogAssignment{
		UnitID:          f.unitID,
		SurfaceDefaults: map[string]string{"floor": "ceramic_tile"},
	}

	categories, err := f.svc.ListMaterials(f.unitID)
	require.NoError(t, err)

	byCategory := make(map[models.SurfaceCategory]CategoryOptions, len(categories))
	for _, c := range categories {
		byCategory[c.Category] = c
	}

	floor := byCategory[models.SurfaceFloor]
	assert.Equal(t, 1, floor.Total)
	assert.Equal(t, 1, floor.Hidden)
	assert.Empty(t, floor.Options)

	wall := byCategory[models.SurfaceWall]
	assert.Equal(t, 1, wall.Total)
	assert.Equal(t, 0, wall.Hidden)
	assert.Len(t, wall.Options, 1)
}

func TestSessionExpiryRebuildRoundTrip(t *testing.T) {
	f := newFixture(t)
	buyer := uuid.New()

	first, err := f.svc.CreateSession(context.Background(), f.unitID, &buyer, nil)
	require.NoError(t, err)
	_, err = f.svc.ApplyMaterial(first.SessionID, "floor", f.floor.OptionID)
	require.NoError(t, err)
	saved, err := f.svc.Save(context.Background(), first.SessionID, nil)
	require.NoError(t, err)

	// A fresh session for the same buyer and unit picks up the saved state.
	f.svc.Store.Delete(first.SessionID)
	second, err := f.svc.CreateSession(context.Background(), f.unitID, &buyer, nil)
	require.NoError(t, err)

	assert.Equal(t, saved.Breakdown.PriceTotal, second.Breakdown.PriceTotal)
	assert.Equal(t, f.floor.OptionID, second.Selections[models.SurfaceFloor])
	assert.False(t, second.IsPriceStale)
}
