package geometry

import (
	"math"

	"viewer-service/internal/models"
	"viewer-service/internal/utils"
)

// Quantity computes the billable material quantity for one surface category:
// plan area (x*y) for floors and ceilings, the largest-face area (product of
// the two largest dimensions) for walls, summed across the category's meshes.
// A non-finite or non-positive sum collapses to 1 so a priced selection never
// produces a vanishing line item.
func (cl Classification) Quantity(category models.SurfaceCategory) float64 {
	var quantity float64
	for _, h := range cl.Handles[category] {
		size, ok := cl.Sizes[h]
		if !ok {
			continue
		}
		switch category {
		case models.SurfaceFloor, models.SurfaceCeiling:
			quantity += size.X * size.Y
		default:
			quantity += largestFaceArea([3]float64{size.X, size.Y, size.Z})
		}
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		quantity = 1
	}
	return utils.Round2(quantity)
}

func largestFaceArea(dims [3]float64) float64 {
	a, b, c := dims[0], dims[1], dims[2]
	if a < b {
		a, b = b, a
	}
	if b < c {
		b, c = c, b
	}
	if a < b {
		a, b = b, a
	}
	return a * b
}
