package models

import "strings"

// SurfaceCategory is the unit of material selection and pricing.
type SurfaceCategory string

const (
	SurfaceWall    SurfaceCategory = "wall"
	SurfaceFloor   SurfaceCategory = "floor"
	SurfaceCeiling SurfaceCategory = "ceiling"
)

// SurfaceCategories lists all categories in presentation and pricing order.
var SurfaceCategories = []SurfaceCategory{SurfaceWall, SurfaceFloor, SurfaceCeiling}

// ParseSurfaceCategory converts a raw string into a SurfaceCategory.
func ParseSurfaceCategory(value string) (SurfaceCategory, bool) {
	switch SurfaceCategory(strings.ToLower(strings.TrimSpace(value))) {
	case SurfaceWall:
		return SurfaceWall, true
	case SurfaceFloor:
		return SurfaceFloor, true
	case SurfaceCeiling:
		return SurfaceCeiling, true
	}
	return "", false
}
