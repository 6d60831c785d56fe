package catalog

import (
	"strings"

	"viewer-service/internal/models"
)

// AllowedMaterials maps each surface category to the catalog slugs a buyer
// may pick from. An empty slug list means the category is unrestricted.
type AllowedMaterials map[models.SurfaceCategory][]string

// ResolveAllowed collects the allowed slugs per category from a unit's
// catalog assignment: the surface defaults plus every room's per-surface
// materials. A nil or malformed assignment resolves to no restrictions at
// all, because missing designer data must not block material selection.
func ResolveAllowed(assignment *models.CatalogAssignment) AllowedMaterials {
	allowed := make(AllowedMaterials, len(models.SurfaceCategories))
	for _, cat := range models.SurfaceCategories {
		allowed[cat] = nil
	}
	if assignment == nil {
		return allowed
	}

	seen := make(map[models.SurfaceCategory]map[string]bool, len(models.SurfaceCategories))
	for _, cat := range models.SurfaceCategories {
		seen[cat] = make(map[string]bool)
	}
	push := func(surface, slug string) {
		if slug == "" {
			return
		}
		cat, ok := normalizeSurfaceName(surface)
		if !ok {
			return
		}
		if !seen[cat][slug] {
			seen[cat][slug] = true
			allowed[cat] = append(allowed[cat], slug)
		}
	}

	for surface, slug := range assignment.SurfaceDefaults {
		push(surface, slug)
	}
	for _, room := range assignment.Rooms {
		for surface, details := range room.Materials {
			push(surface, details.Material)
		}
	}
	return allowed
}

// normalizeSurfaceName maps a free-form surface name onto a category by
// case-insensitive substring match. Floor wins over ceiling over wall, the
// order the assignment data has always been interpreted in.
func normalizeSurfaceName(surface string) (models.SurfaceCategory, bool) {
	key := strings.ToLower(surface)
	switch {
	case strings.Contains(key, "floor"):
		return models.SurfaceFloor, true
	case strings.Contains(key, "ceiling"):
		return models.SurfaceCeiling, true
	case strings.Contains(key, "wall"):
		return models.SurfaceWall, true
	}
	return "", false
}

// Permits reports whether an option is selectable in the given category:
// either the category is unrestricted or the option matches at least one
// allowed slug.
func (a AllowedMaterials) Permits(category models.SurfaceCategory, option models.MaterialOption) bool {
	slugs := a[category]
	if len(slugs) == 0 {
		return true
	}
	for _, slug := range slugs {
		if OptionMatchesSlug(option, slug) {
			return true
		}
	}
	return false
}

// FilterWhitelist returns the entries of a category that survive the
// allowed-materials restriction. Unmatched options are excluded outright,
// never just disabled.
func FilterWhitelist(entries []models.WhitelistEntry, category models.SurfaceCategory, allowed AllowedMaterials) []models.WhitelistEntry {
	var out []models.WhitelistEntry
	for _, entry := range entries {
		if !strings.EqualFold(entry.Option.Category, string(category)) {
			continue
		}
		if allowed.Permits(category, entry.Option) {
			out = append(out, entry)
		}
	}
	return out
}

// CountCategory returns how many whitelist entries belong to a category
// before restriction filtering.
func CountCategory(entries []models.WhitelistEntry, category models.SurfaceCategory) int {
	n := 0
	for _, entry := range entries {
		if strings.EqualFold(entry.Option.Category, string(category)) {
			n++
		}
	}
	return n
}
