package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"viewer-service/internal/models"
)

func TestTokenizeIdentifier(t *testing.T) {
	assert.Equal(t, []string{"oak", "parquet"}, TokenizeIdentifier("oak_parquet"))
	assert.Equal(t, []string{"flooring", "oak", "parquet"}, TokenizeIdentifier("Oak Parquet Flooring"))
	assert.Equal(t, []string{"2", "ceramic", "tile"}, TokenizeIdentifier("Ceramic-Tile (2)"))
	assert.Nil(t, TokenizeIdentifier("---"))
	assert.Nil(t, TokenizeIdentifier(""))
}

func TestOptionMatchesSlugTokenSubset(t *testing.T) {
	option := models.MaterialOption{Name: "Oak Parquet Flooring"}

	assert.True(t, OptionMatchesSlug(option, "oak_parquet"))
	assert.True(t, OptionMatchesSlug(option, "Parquet Oak"))
	assert.False(t, OptionMatchesSlug(option, "walnut_parquet"))
}

func TestOptionMatchesSlugJoinedSubstring(t *testing.T) {
	// "oakparquet" shares no token with the name but the joined forms contain
	// each other.
	option := models.MaterialOption{Name: "Oak Parquet"}

	assert.True(t, OptionMatchesSlug(option, "oakparquet"))
	assert.True(t, OptionMatchesSlug(models.MaterialOption{Name: "Oak"}, "oak_parquet"))
}

func TestOptionMatchesSlugAlbedoPath(t *testing.T) {
	albedo := "https://cdn.example.com/textures/oak_parquet/albedo.jpg"
	option := models.MaterialOption{Name: "Premium Hardwood", AlbedoURL: &albedo}

	assert.True(t, OptionMatchesSlug(option, "oak_parquet"))
	assert.False(t, OptionMatchesSlug(option, "ceramic_tile"))
}

func TestOptionMatchesSlugEmptySlug(t *testing.T) {
	option := models.MaterialOption{Name: "Oak Parquet"}

	assert.False(t, OptionMatchesSlug(option, ""))
	assert.False(t, OptionMatchesSlug(option, "__"))
}
