package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Purchase is a single checkout attempt. It is created exactly once per
// submission, always starting in pending; status only moves forward via the
// webhook receiver (or the optimistic forwarding strategy) and rows are
// never deleted from this flow.
type Purchase struct {
	ID               string     `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;primaryKey" json:"id"`
	CustomerName     string     `gorm:"type:varchar(200);not null" json:"customer_name"`
	CustomerEmail    string     `gorm:"type:varchar(200);not null;index" json:"customer_email"`
	ProductID        *uint      `gorm:"index" json:"product_id,omitempty"`
	Product          *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Amount           float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentStatus    string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	PaymentID        *string    `gorm:"type:varchar(191);default:null;index" json:"payment_id,omitempty"`
	DownloadCount    int        `gorm:"not null;default:0" json:"download_count"`
	LastDownloaded   *time.Time `gorm:"type:timestamp;default:null" json:"last_downloaded,omitempty"`
	WebhookProcessed bool       `gorm:"default:false" json:"webhook_processed"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = PaymentStatusPending
	}
	return nil
}

// IsCompleted reports whether payment has been confirmed for this purchase.
func (p *Purchase) IsCompleted() bool {
	return p.PaymentStatus == PaymentStatusCompleted
}
