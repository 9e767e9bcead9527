package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookAsset points at one downloadable ebook file. AssetURL is either a full
// external URL or an object key in the configured S3 bucket; the newest row
// is what purchasers download.
type BookAsset struct {
	ID        string    `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;primaryKey" json:"id"`
	AssetName string    `gorm:"type:varchar(255);not null" json:"asset_name"`
	AssetURL  string    `gorm:"type:varchar(500);not null" json:"asset_url"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *BookAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsExternal reports whether AssetURL already is a resolvable URL rather
// than an object key that needs presigning.
func (a *BookAsset) IsExternal() bool {
	return strings.HasPrefix(a.AssetURL, "http://") || strings.HasPrefix(a.AssetURL, "https://")
}
