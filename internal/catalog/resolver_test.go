package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewer-service/internal/models"
)

func TestResolveAllowedNilAssignmentFailsOpen(t *testing.T) {
	allowed := ResolveAllowed(nil)

	for _, cat := range models.SurfaceCategories {
		assert.Empty(t, allowed[cat])
		assert.True(t, allowed.Permits(cat, models.MaterialOption{Name: "Anything"}))
	}
}

func TestResolveAllowedFromDefaultsAndRooms(t *testing.T) {
	assignment := &models.CatalogAssignment{
		SurfaceDefaults: map[string]string{
			"floor":   "oak_parquet",
			"ceiling": "white_gypsum",
		},
		Rooms: []models.RoomAssignment{
			{
				Name: "Living Room",
				Materials: map[string]models.RoomSurfaceMaterial{
					"floorMaterial": {Material: "ceramic_tile"},
					"wallMaterial":  {Material: "beige_paint"},
				},
			},
			{
				Name: "Bedroom",
				Materials: map[string]models.RoomSurfaceMaterial{
					"floorMaterial": {Material: "oak_parquet"},
				},
			},
		},
	}

	allowed := ResolveAllowed(assignment)

	assert.ElementsMatch(t, []string{"oak_parquet", "ceramic_tile"}, allowed[models.SurfaceFloor])
	assert.Equal(t, []string{"white_gypsum"}, allowed[models.SurfaceCeiling])
	assert.Equal(t, []string{"beige_paint"}, allowed[models.SurfaceWall])
}

func TestResolveAllowedIgnoresUnknownSurfacesAndEmptySlugs(t *testing.T) {
	assignment := &models.CatalogAssignment{
		SurfaceDefaults: map[string]string{
			"countertop": "granite",
			"floor":      "",
		},
	}

	allowed := ResolveAllowed(assignment)

	for _, cat := range models.SurfaceCategories {
		assert.Empty(t, allowed[cat])
	}
}

func TestPermitsRestrictedCategory(t *testing.T) {
	allowed := AllowedMaterials{
		models.SurfaceFloor: {"oak_parquet"},
	}

	assert.True(t, allowed.Permits(models.SurfaceFloor, models.MaterialOption{Name: "Oak Parquet Flooring"}))
	assert.False(t, allowed.Permits(models.SurfaceFloor, models.MaterialOption{Name: "Ceramic Tile"}))
	// Unrestricted category admits everything.
	assert.True(t, allowed.Permits(models.SurfaceWall, models.MaterialOption{Name: "Ceramic Tile"}))
}

func TestFilterWhitelist(t *testing.T) {
	entries := []models.WhitelistEntry{
		{OptionID: uuid.New(), Option: models.MaterialOption{Name: "Oak Parquet", Category: "floor"}},
		{OptionID: uuid.New(), Option: models.MaterialOption{Name: "Ceramic Tile", Category: "Floor"}},
		{OptionID: uuid.New(), Option: models.MaterialOption{Name: "Beige Paint", Category: "wall"}},
	}
	allowed := AllowedMaterials{
		models.SurfaceFloor: {"oak_parquet"},
	}

	floors := FilterWhitelist(entries, models.SurfaceFloor, allowed)

	require.Len(t, floors, 1)
	assert.Equal(t, "Oak Parquet", floors[0].Option.Name)
	assert.Equal(t, 2, CountCategory(entries, models.SurfaceFloor))
	assert.Equal(t, 1, CountCategory(entries, models.SurfaceWall))
}
