package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/PageTurnApp/PageTurn/app/models"
	"github.com/PageTurnApp/PageTurn/internal/pkg/payment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory fakes shared by the controller tests. They mirror the SQL
// semantics of the real repositories closely enough to exercise the
// handlers through app.Test without a database.

type fakePaymentRepo struct {
	mu        sync.Mutex
	purchases map[string]*models.Purchase
	events    map[string]*models.PaymentWebhookEvent

	failCreateEvent bool
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		purchases: map[string]*models.Purchase{},
		events:    map[string]*models.PaymentWebhookEvent{},
	}
}

func (f *fakePaymentRepo) CreatePurchase(p *models.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = models.PaymentStatusPending
	}
	f.purchases[p.ID] = p
	return nil
}

func (f *fakePaymentRepo) GetPurchaseByID(id string) (*models.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentRepo) MarkCompleted(id, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.PaymentStatus = models.PaymentStatusCompleted
	p.WebhookProcessed = true
	if paymentID != "" {
		p.PaymentID = &paymentID
	}
	return nil
}

func (f *fakePaymentRepo) SetPaymentID(id, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.PaymentID = &paymentID
	return nil
}

func (f *fakePaymentRepo) RecordDownload(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.PaymentStatus != models.PaymentStatusCompleted {
		return payment.ErrDownloadNotReady
	}
	now := time.Now()
	p.DownloadCount++
	p.LastDownloaded = &now
	return nil
}

func (f *fakePaymentRepo) CreateWebhookEvent(event *models.PaymentWebhookEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateEvent {
		return errors.New("insert failed")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Status == "" {
		event.Status = models.WebhookEventStatusReceived
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakePaymentRepo) MarkWebhookProcessed(id, processingError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	e.ProcessedAt = &now
	e.ProcessingError = processingError
	if processingError != "" {
		e.Status = models.WebhookEventStatusFailed
	} else {
		e.Status = models.WebhookEventStatusProcessed
	}
	return nil
}

func (f *fakePaymentRepo) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeProductRepo struct {
	product *models.Product
	err     error
}

func (f *fakeProductRepo) Create(product *models.Product) error { return nil }
func (f *fakeProductRepo) GetByID(id uint) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeProductRepo) GetActiveBySKU(sku string) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.product == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.product, nil
}
func (f *fakeProductRepo) Update(product *models.Product) error          { return nil }
func (f *fakeProductRepo) List(offset, limit int) ([]models.Product, error) { return nil, nil }
func (f *fakeProductRepo) Count() (int64, error)                         { return 0, nil }

func jsonDecode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func activeProduct() *models.Product {
	return &models.Product{
		ID:       1,
		SKU:      "ebook-main",
		Title:    "The Complete Guide",
		Price:    29.99,
		Currency: "usd",
		IsActive: true,
	}
}
