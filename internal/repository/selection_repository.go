package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"viewer-service/internal/models"
)

// SelectionRepository defines persistence for saved selections and their
// bounded history.
type SelectionRepository interface {
	SaveSelection(selection *models.SavedSelection) error
	LatestSelection(buyerID, unitID uuid.UUID) (*models.SavedSelection, error)
	RecentSelections(buyerID, unitID uuid.UUID, limit int) ([]models.SavedSelection, error)
}

// SelectionRepositoryImpl provides methods to interact with saved selections
// in the database.
type SelectionRepositoryImpl struct {
	db *gorm.DB
}

// NewSelectionRepository creates a new SelectionRepositoryImpl instance with the provided GORM database connection.
func NewSelectionRepository(db *gorm.DB) *SelectionRepositoryImpl {
	return &SelectionRepositoryImpl{db: db}
}

// SaveSelection appends a new saved selection row. Every save is a new row;
// history queries order by save time.
func (r *SelectionRepositoryImpl) SaveSelection(selection *models.SavedSelection) error {
	return r.db.Create(selection).Error
}

// LatestSelection retrieves the most recent saved selection for a buyer and
// unit pair.
func (r *SelectionRepositoryImpl) LatestSelection(buyerID, unitID uuid.UUID) (*models.SavedSelection, error) {
	var selection models.SavedSelection
	err := r.db.Where("buyer_id = ? AND unit_id = ?", buyerID, unitID).
		Order("saved_at DESC").
		First(&selection).Error
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

// RecentSelections retrieves up to limit saved selections, most recent first.
func (r *SelectionRepositoryImpl) RecentSelections(buyerID, unitID uuid.UUID, limit int) ([]models.SavedSelection, error) {
	var selections []models.SavedSelection
	err := r.db.Where("buyer_id = ? AND unit_id = ?", buyerID, unitID).
		Order("saved_at DESC").
		Limit(limit).
		Find(&selections).Error
	return selections, err
}
