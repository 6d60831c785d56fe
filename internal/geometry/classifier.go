package geometry

import (
	"viewer-service/internal/models"
)

// Handle identifies a mesh by its index in the scene payload. The render
// layer owns the actual mesh objects; the engine only ever refers to them by
// handle when issuing apply-material commands.
type Handle int

// Classification is the owned result of one classifier pass over a scene.
// It carries everything quantity estimation and pricing need, so no ambient
// scene state is shared between passes.
type Classification struct {
	// Handles lists the classified meshes per surface category, in scene order.
	Handles map[models.SurfaceCategory][]Handle
	// Sizes holds a copy of each classified mesh's bounding-box dimensions.
	Sizes map[Handle]Vec3
	// Defaults are the deduplicated catalog slugs observed in mesh metadata
	// per category, for display only.
	Defaults map[models.SurfaceCategory][]string
	// Skipped counts meshes without a computable bounding box.
	Skipped int
}

// Classifier assigns every mesh of a scene to a surface category from its
// bounding box. The thresholds encode a z-up, meter-scale coordinate
// convention; they are configuration, not constants, because that convention
// is not guaranteed for arbitrary input models.
type Classifier struct {
	thinness    float64
	floorCenter float64
}

// Default thresholds for z-up, meter-scale models.
const (
	DefaultThinnessThreshold    = 0.2
	DefaultFloorCenterThreshold = 0.5
)

// NewClassifier creates a classifier with the given thinness and floor-center
// thresholds. Non-positive values fall back to the defaults.
func NewClassifier(thinness, floorCenter float64) *Classifier {
	if thinness <= 0 {
		thinness = DefaultThinnessThreshold
	}
	if floorCenter <= 0 {
		floorCenter = DefaultFloorCenterThreshold
	}
	return &Classifier{thinness: thinness, floorCenter: floorCenter}
}

// Classify runs one pass over the scene. Meshes whose thickness axis (dz) is
// below the thinness threshold are horizontal surfaces, split into floor and
// ceiling by the bounding-box center height; everything else is a wall. A
// mesh with no computable bounding box is skipped, never fatal.
func (c *Classifier) Classify(scene Scene) Classification {
	cl := Classification{
		Handles:  make(map[models.SurfaceCategory][]Handle, len(models.SurfaceCategories)),
		Sizes:    make(map[Handle]Vec3, len(scene.Meshes)),
		Defaults: make(map[models.SurfaceCategory][]string, len(models.SurfaceCategories)),
	}
	seen := make(map[models.SurfaceCategory]map[string]bool, len(models.SurfaceCategories))
	for _, cat := range models.SurfaceCategories {
		cl.Handles[cat] = nil
		cl.Defaults[cat] = nil
		seen[cat] = make(map[string]bool)
	}

	for i, mesh := range scene.Meshes {
		if mesh.Bounds == nil || !mesh.Bounds.Valid() {
			cl.Skipped++
			continue
		}
		size := mesh.Bounds.Size()

		category := models.SurfaceWall
		if size.Z < c.thinness {
			if mesh.Bounds.Center().Z < c.floorCenter {
				category = models.SurfaceFloor
			} else {
				category = models.SurfaceCeiling
			}
		}

		h := Handle(i)
		cl.Handles[category] = append(cl.Handles[category], h)
		cl.Sizes[h] = size

		if mesh.CatalogSlug != "" && !seen[category][mesh.CatalogSlug] {
			seen[category][mesh.CatalogSlug] = true
			cl.Defaults[category] = append(cl.Defaults[category], mesh.CatalogSlug)
		}
	}
	return cl
}

// MeshCount returns the number of classified meshes across all categories.
func (cl Classification) MeshCount() int {
	n := 0
	for _, handles := range cl.Handles {
		n += len(handles)
	}
	return n
}
