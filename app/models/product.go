package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Product is the sellable ebook. Checkout only ever reads it; pricing and
// activation are managed out of band.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SKU         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku" validate:"required,min=2,max=100"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price" validate:"gt=0"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'usd'" json:"currency" validate:"len=3"`
	FilePath    *string   `gorm:"type:varchar(255);default:null" json:"file_path,omitempty"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// PriceCents returns the price in currency minor units as expected by
// hosted-checkout session APIs.
func (p *Product) PriceCents() int64 {
	return int64(p.Price*100 + 0.5)
}
