package repository

import (
	"github.com/PageTurnApp/PageTurn/app/models"
	"gorm.io/gorm"
)

// ProductRepository defines the interface for product-related database operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetActiveBySKU(sku string) (*models.Product, error)
	Update(product *models.Product) error
	List(offset, limit int) ([]models.Product, error)
	Count() (int64, error)
}

// BookAssetRepository defines the interface for book asset database operations
type BookAssetRepository interface {
	Create(asset *models.BookAsset) error
	GetByID(id string) (*models.BookAsset, error)
	GetLatest() (*models.BookAsset, error)
	List(offset, limit int) ([]models.BookAsset, error)
	Delete(id string) error
}

// Repositories holds all repository instances
type Repositories struct {
	Product   ProductRepository
	BookAsset BookAssetRepository
}

// NewRepositories creates all repositories backed by the given DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:   NewProductRepository(db),
		BookAsset: NewBookAssetRepository(db),
	}
}
