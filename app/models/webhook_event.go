package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WebhookEventStatusReceived  = "received"
	WebhookEventStatusProcessed = "processed"
	WebhookEventStatusFailed    = "failed"
)

// PaymentWebhookEvent is the append-only audit log of inbound payment
// notifications. The payload is stored verbatim; only the processing stamps
// are written after insert.
type PaymentWebhookEvent struct {
	ID              string     `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;primaryKey" json:"id"`
	Payload         string     `gorm:"type:longtext;not null" json:"payload"`
	Status          string     `gorm:"type:varchar(20);not null;default:'received';index" json:"status"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (e *PaymentWebhookEvent) TableName() string {
	return "payment_webhook_events"
}

func (e *PaymentWebhookEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = WebhookEventStatusReceived
	}
	return nil
}
