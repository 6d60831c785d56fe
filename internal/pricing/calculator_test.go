package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewer-service/internal/geometry"
	"viewer-service/internal/models"
	"viewer-service/internal/utils"
)

func testClassification() geometry.Classification {
	scene := geometry.Scene{Meshes: []geometry.Mesh{
		{Bounds: &geometry.Box{Min: geometry.Vec3{}, Max: geometry.Vec3{X: 4, Y: 3, Z: 0.1}}},
		{Bounds: &geometry.Box{Min: geometry.Vec3{}, Max: geometry.Vec3{X: 3, Y: 0.15, Z: 2.5}}},
	}}
	return geometry.NewClassifier(0, 0).Classify(scene)
}

func entry(name, category string, price float64) models.WhitelistEntry {
	return models.WhitelistEntry{
		ID:       uuid.New(),
		OptionID: uuid.New(),
		Option: models.MaterialOption{
			ID:       uuid.New(),
			Name:     name,
			Category: category,
			Price:    price,
		},
	}
}

func TestCalculateEmptySelection(t *testing.T) {
	calc := NewCalculator(nil)

	breakdown := calc.Calculate(100000, models.Selection{}, testClassification())

	assert.Equal(t, 100000.0, breakdown.BasePrice)
	assert.Equal(t, 0.0, breakdown.AddonTotal)
	assert.Equal(t, 100000.0, breakdown.PriceTotal)
	assert.Empty(t, breakdown.LineItems)
}

func TestCalculateFloorSelection(t *testing.T) {
	floor := entry("Oak Parquet", "floor", 50)
	calc := NewCalculator([]models.WhitelistEntry{floor})
	selection := models.Selection{models.SurfaceFloor: floor.OptionID}

	breakdown := calc.Calculate(100000, selection, testClassification())

	// Floor plan area is 12 m2 at 50 per m2.
	require.Len(t, breakdown.LineItems, 1)
	assert.Equal(t, 600.0, breakdown.LineItems[0].Subtotal)
	assert.Equal(t, 12.0, breakdown.LineItems[0].Quantity)
	assert.Equal(t, 600.0, breakdown.AddonTotal)
	assert.Equal(t, 100600.0, breakdown.PriceTotal)
}

func TestCalculateTotalInvariant(t *testing.T) {
	floor := entry("Oak Parquet", "floor", 49.99)
	wall := entry("Beige Paint", "wall", 12.35)
	calc := NewCalculator([]models.WhitelistEntry{floor, wall})
	selection := models.Selection{
		models.SurfaceFloor: floor.OptionID,
		models.SurfaceWall:  wall.OptionID,
	}

	breakdown := calc.Calculate(99999.99, selection, testClassification())

	var sum float64
	for _, item := range breakdown.LineItems {
		sum += item.Subtotal
	}
	assert.Equal(t, utils.Round2(sum), breakdown.AddonTotal)
	assert.Equal(t, utils.Round2(breakdown.BasePrice+breakdown.AddonTotal), breakdown.PriceTotal)
}

func TestCalculateSkipsMissingWhitelistEntry(t *testing.T) {
	floor := entry("Oak Parquet", "floor", 50)
	calc := NewCalculator([]models.WhitelistEntry{floor})
	selection := models.Selection{
		models.SurfaceFloor: floor.OptionID,
		models.SurfaceWall:  uuid.New(),
	}

	breakdown := calc.Calculate(100000, selection, testClassification())

	require.Len(t, breakdown.LineItems, 1)
	assert.Equal(t, models.SurfaceFloor, breakdown.LineItems[0].Category)
}

func TestCalculateOverridePrice(t *testing.T) {
	override := 40.0
	floor := entry("Oak Parquet", "floor", 50)
	floor.OverridePrice = &override
	calc := NewCalculator([]models.WhitelistEntry{floor})
	selection := models.Selection{models.SurfaceFloor: floor.OptionID}

	breakdown := calc.Calculate(0, selection, testClassification())

	require.Len(t, breakdown.LineItems, 1)
	assert.Equal(t, 40.0, breakdown.LineItems[0].UnitPrice)
	assert.Equal(t, 480.0, breakdown.PriceTotal)
}

func TestCalculateIsDeterministic(t *testing.T) {
	floor := entry("Oak Parquet", "floor", 50)
	wall := entry("Beige Paint", "wall", 12)
	calc := NewCalculator([]models.WhitelistEntry{floor, wall})
	selection := models.Selection{
		models.SurfaceFloor: floor.OptionID,
		models.SurfaceWall:  wall.OptionID,
	}
	cl := testClassification()

	first := calc.Calculate(100000, selection, cl)
	second := calc.Calculate(100000, selection, cl)

	assert.Equal(t, first, second)
}

func TestCalculateClonesSelection(t *testing.T) {
	floor := entry("Oak Parquet", "floor", 50)
	calc := NewCalculator([]models.WhitelistEntry{floor})
	selection := models.Selection{models.SurfaceFloor: floor.OptionID}

	breakdown := calc.Calculate(100000, selection, testClassification())
	selection[models.SurfaceWall] = uuid.New()

	assert.NotContains(t, breakdown.Selections, models.SurfaceWall)
}
