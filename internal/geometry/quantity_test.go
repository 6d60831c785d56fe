package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"viewer-service/internal/models"
)

func TestQuantityFloorIsPlanArea(t *testing.T) {
	scene := Scene{Meshes: []Mesh{
		{Bounds: box(0, 0, 0, 4, 3, 0.1)},
	}}
	cl := NewClassifier(0, 0).Classify(scene)

	assert.Equal(t, 12.0, cl.Quantity(models.SurfaceFloor))
}

func TestQuantityWallIsLargestFace(t *testing.T) {
	// 3 x 0.15 x 2.5: the two largest dims are 3 and 2.5.
	scene := Scene{Meshes: []Mesh{
		{Bounds: box(0, 0, 0, 3, 0.15, 2.5)},
	}}
	cl := NewClassifier(0, 0).Classify(scene)

	assert.Equal(t, 7.5, cl.Quantity(models.SurfaceWall))
}

func TestQuantitySumsAcrossMeshes(t *testing.T) {
	scene := Scene{Meshes: []Mesh{
		{Bounds: box(0, 0, 0, 4, 3, 0.1)},
		{Bounds: box(5, 0, 0, 7, 2, 0.1)},
	}}
	cl := NewClassifier(0, 0).Classify(scene)

	assert.Equal(t, 16.0, cl.Quantity(models.SurfaceFloor))
}

func TestQuantityDegenerateCollapsesToOne(t *testing.T) {
	// Zero-extent floor yields zero area, which must price as 1 unit.
	scene := Scene{Meshes: []Mesh{
		{Bounds: box(0, 0, 0, 0, 3, 0.1)},
	}}
	cl := NewClassifier(0, 0).Classify(scene)

	assert.Equal(t, 1.0, cl.Quantity(models.SurfaceFloor))
}

func TestQuantityEmptyCategoryIsOne(t *testing.T) {
	cl := NewClassifier(0, 0).Classify(Scene{})
	assert.Equal(t, 1.0, cl.Quantity(models.SurfaceCeiling))
}

func TestQuantityRoundsToTwoDecimals(t *testing.T) {
	scene := Scene{Meshes: []Mesh{
		{Bounds: box(0, 0, 0, 1.111, 1.111, 0.1)},
	}}
	cl := NewClassifier(0, 0).Classify(scene)

	assert.Equal(t, 1.23, cl.Quantity(models.SurfaceFloor))
}
