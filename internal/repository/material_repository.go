package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"viewer-service/internal/models"
)

// MaterialRepository defines read access to units, whitelists and catalog
// assignments.
type MaterialRepository interface {
	GetUnit(id uuid.UUID) (*models.ListingUnit, error)
	WhitelistForUnit(unitID uuid.UUID) ([]models.WhitelistEntry, error)
	AssignmentForUnit(unitID uuid.UUID) (*models.CatalogAssignment, error)
}

// MaterialRepositoryImpl provides methods to interact with the material
// catalog tables in the database.
type MaterialRepositoryImpl struct {
	db *gorm.DB
}

// NewMaterialRepository creates a new MaterialRepositoryImpl instance with the provided GORM database connection.
func NewMaterialRepository(db *gorm.DB) *MaterialRepositoryImpl {
	return &MaterialRepositoryImpl{db: db}
}

// GetUnit retrieves a ListingUnit by its ID from the database.
func (r *MaterialRepositoryImpl) GetUnit(id uuid.UUID) (*models.ListingUnit, error) {
	var unit models.ListingUnit
	err := r.db.First(&unit, "id = ?", id).Error
	return &unit, err
}

// WhitelistForUnit retrieves the priced material menu for a unit, options
// preloaded.
func (r *MaterialRepositoryImpl) WhitelistForUnit(unitID uuid.UUID) ([]models.WhitelistEntry, error) {
	var entries []models.WhitelistEntry
	err := r.db.Preload("Option").Where("unit_id = ?", unitID).Find(&entries).Error
	return entries, err
}

// AssignmentForUnit retrieves the designer-authored catalog assignment for a
// unit, if any.
func (r *MaterialRepositoryImpl) AssignmentForUnit(unitID uuid.UUID) (*models.CatalogAssignment, error) {
	var assignment models.CatalogAssignment
	err := r.db.First(&assignment, "unit_id = ?", unitID).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
