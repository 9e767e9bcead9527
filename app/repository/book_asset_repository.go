package repository

import (
	"github.com/PageTurnApp/PageTurn/app/models"
	"gorm.io/gorm"
)

// bookAssetRepository implements the BookAssetRepository interface
type bookAssetRepository struct {
	db *gorm.DB
}

// NewBookAssetRepository creates a new book asset repository instance
func NewBookAssetRepository(db *gorm.DB) BookAssetRepository {
	return &bookAssetRepository{db: db}
}

// Create registers a new book asset in the database
func (r *bookAssetRepository) Create(asset *models.BookAsset) error {
	return r.db.Create(asset).Error
}

// GetByID retrieves a book asset by its ID
func (r *bookAssetRepository) GetByID(id string) (*models.BookAsset, error) {
	var asset models.BookAsset
	err := r.db.Where("id = ?", id).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetLatest retrieves the most recently registered book asset
func (r *bookAssetRepository) GetLatest() (*models.BookAsset, error) {
	var asset models.BookAsset
	err := r.db.Order("created_at DESC").First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// List retrieves book assets with pagination, newest first
func (r *bookAssetRepository) List(offset, limit int) ([]models.BookAsset, error) {
	var assets []models.BookAsset
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&assets).Error
	return assets, err
}

// Delete removes a book asset by its ID
func (r *bookAssetRepository) Delete(id string) error {
	return r.db.Delete(&models.BookAsset{}, "id = ?", id).Error
}
