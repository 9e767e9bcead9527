package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/PageTurnApp/PageTurn/app/models"
	"gorm.io/gorm"
)

// ErrDownloadNotReady is returned when a download is recorded against a
// purchase whose payment has not been confirmed yet.
var ErrDownloadNotReady = errors.New("purchase payment is not completed")

// Service wraps the purchase lifecycle: one pending row per checkout
// attempt, webhook-driven (or optimistic) completion, and monotonic download
// accounting.
type Service struct {
	repo Repository
}

// NewService creates a payment service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a payment service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// CreatePendingPurchase inserts the purchase row for one checkout attempt.
// The amount always comes from the product record, never from the client.
// Storage failures propagate verbatim.
func (s *Service) CreatePendingPurchase(ctx context.Context, customerName, customerEmail string, product *models.Product) (*models.Purchase, error) {
	_ = ctx
	name := strings.TrimSpace(customerName)
	email := strings.TrimSpace(customerEmail)
	if name == "" || email == "" {
		return nil, errors.New("customer name and email are required")
	}
	if product == nil {
		return nil, errors.New("product is required")
	}

	productID := product.ID
	purchase := &models.Purchase{
		CustomerName:  name,
		CustomerEmail: email,
		ProductID:     &productID,
		Amount:        product.Price,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := s.repo.CreatePurchase(purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

// GetPurchase fetches a purchase by id; gorm.ErrRecordNotFound when missing.
func (s *Service) GetPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	_ = ctx
	if strings.TrimSpace(id) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return s.repo.GetPurchaseByID(id)
}

// MarkCompleted transitions a purchase to completed. Idempotent; concurrent
// calls converge on the same terminal state.
func (s *Service) MarkCompleted(ctx context.Context, id, paymentID string) error {
	_ = ctx
	if strings.TrimSpace(id) == "" {
		return errors.New("purchase id is required")
	}
	return s.repo.MarkCompleted(id, strings.TrimSpace(paymentID))
}

// SetPaymentID backfills the external session identifier after a hosted
// checkout session has been created.
func (s *Service) SetPaymentID(ctx context.Context, id, paymentID string) error {
	_ = ctx
	if strings.TrimSpace(id) == "" || strings.TrimSpace(paymentID) == "" {
		return errors.New("purchase id and payment id are required")
	}
	return s.repo.SetPaymentID(id, strings.TrimSpace(paymentID))
}

// RecordDownload atomically bumps the download counter and stamps
// last_downloaded, then returns the refreshed purchase. Fails with
// ErrDownloadNotReady while the purchase is still pending or failed.
func (s *Service) RecordDownload(ctx context.Context, id string) (*models.Purchase, error) {
	_ = ctx
	if strings.TrimSpace(id) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	if err := s.repo.RecordDownload(id); err != nil {
		return nil, err
	}
	return s.repo.GetPurchaseByID(id)
}

// RecordWebhookEvent persists an inbound notification payload verbatim.
// This write is the audit trail: callers must treat its failure as fatal for
// the request.
func (s *Service) RecordWebhookEvent(ctx context.Context, payload []byte) (*models.PaymentWebhookEvent, error) {
	_ = ctx
	event := &models.PaymentWebhookEvent{
		Payload: string(payload),
		Status:  models.WebhookEventStatusReceived,
	}
	if err := s.repo.CreateWebhookEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

// MarkWebhookProcessed stamps an event with its processing outcome.
func (s *Service) MarkWebhookProcessed(ctx context.Context, eventID string, processingErr error) error {
	_ = ctx
	if strings.TrimSpace(eventID) == "" {
		return errors.New("webhook event id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(eventID, errMsg)
}
