package payment

import (
	"time"

	"github.com/PageTurnApp/PageTurn/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations for the purchase lifecycle and the
// webhook event log.
type Repository interface {
	CreatePurchase(p *models.Purchase) error
	GetPurchaseByID(id string) (*models.Purchase, error)
	MarkCompleted(id, paymentID string) error
	SetPaymentID(id, paymentID string) error
	RecordDownload(id string) error
	CreateWebhookEvent(event *models.PaymentWebhookEvent) error
	MarkWebhookProcessed(id, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreatePurchase(p *models.Purchase) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) GetPurchaseByID(id string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Preload("Product").Where("id = ?", id).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// MarkCompleted is a single keyed update so that concurrent callers (webhook
// receiver and an optimistic client) converge on completed without a torn
// intermediate state. Re-running it is a no-op beyond the status write.
func (r *gormRepository) MarkCompleted(id, paymentID string) error {
	updates := map[string]interface{}{
		"payment_status":    models.PaymentStatusCompleted,
		"webhook_processed": true,
	}
	if paymentID != "" {
		updates["payment_id"] = paymentID
	}

	tx := r.db.Model(&models.Purchase{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		// Distinguish "already completed" from "no such purchase".
		var count int64
		if err := r.db.Model(&models.Purchase{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *gormRepository) SetPaymentID(id, paymentID string) error {
	return r.db.Model(&models.Purchase{}).Where("id = ?", id).
		UpdateColumn("payment_id", paymentID).Error
}

// RecordDownload increments the counter in the database rather than writing
// back a value read earlier, so two simultaneous download clicks cannot lose
// an update. The status predicate keeps the counter frozen until payment is
// confirmed.
func (r *gormRepository) RecordDownload(id string) error {
	now := time.Now()
	tx := r.db.Model(&models.Purchase{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentStatusCompleted).
		UpdateColumns(map[string]interface{}{
			"download_count":  gorm.Expr("download_count + ?", 1),
			"last_downloaded": &now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Purchase{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrDownloadNotReady
	}
	return nil
}

func (r *gormRepository) CreateWebhookEvent(event *models.PaymentWebhookEvent) error {
	return r.db.Create(event).Error
}

func (r *gormRepository) MarkWebhookProcessed(id, processingError string) error {
	now := time.Now()
	status := models.WebhookEventStatusProcessed
	if processingError != "" {
		status = models.WebhookEventStatusFailed
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"processed_at":     &now,
			"processing_error": processingError,
		}).Error
}
