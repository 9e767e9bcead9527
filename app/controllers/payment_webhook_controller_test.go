package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PageTurnApp/PageTurn/app/models"
	"github.com/PageTurnApp/PageTurn/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookTestApp(wc *PaymentWebhookController) *fiber.App {
	app := fiber.New()
	app.Post("/payment-webhook", wc.HandlePaymentWebhook)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payment-webhook", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, jsonDecode(resp, &parsed))
	return resp, parsed
}

func seedPending(repo *fakePaymentRepo) *models.Purchase {
	p := &models.Purchase{
		ID:            uuid.NewString(),
		CustomerName:  "Jane Reader",
		CustomerEmail: "jane@example.com",
		Amount:        29.99,
		PaymentStatus: models.PaymentStatusPending,
	}
	repo.purchases[p.ID] = p
	return p
}

func TestHandlePaymentWebhook_FlatShape(t *testing.T) {
	repo := newFakePaymentRepo()
	p := seedPending(repo)
	wc := NewPaymentWebhookController(payment.NewService(repo), nil)
	app := webhookTestApp(wc)

	resp, body := postWebhook(t, app, `{"purchase_id": "`+p.ID+`"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["event_id"])

	stored, err := repo.GetPurchaseByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, stored.PaymentStatus)
	assert.True(t, stored.WebhookProcessed)

	eventID, _ := body["event_id"].(string)
	assert.Equal(t, models.WebhookEventStatusProcessed, repo.events[eventID].Status)
}

func TestHandlePaymentWebhook_SessionEnvelope(t *testing.T) {
	repo := newFakePaymentRepo()
	p := seedPending(repo)
	wc := NewPaymentWebhookController(payment.NewService(repo), nil)
	app := webhookTestApp(wc)

	envelope := `{
		"type": "checkout.session.completed",
		"data": { "object": { "id": "cs_9", "client_reference_id": "` + p.ID + `" } }
	}`
	resp, body := postWebhook(t, app, envelope)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	stored, err := repo.GetPurchaseByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentID)
	assert.Equal(t, "cs_9", *stored.PaymentID)
}

func TestHandlePaymentWebhook_Idempotent(t *testing.T) {
	repo := newFakePaymentRepo()
	p := seedPending(repo)
	wc := NewPaymentWebhookController(payment.NewService(repo), nil)
	app := webhookTestApp(wc)

	for i := 0; i < 2; i++ {
		resp, body := postWebhook(t, app, `{"purchase_id": "`+p.ID+`"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
	}

	stored, err := repo.GetPurchaseByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, stored.PaymentStatus)
	// Every delivery lands in the audit log, even repeats.
	assert.Equal(t, 2, repo.eventCount())
}

func TestHandlePaymentWebhook_UnparsableBodyLeavesNoEvent(t *testing.T) {
	repo := newFakePaymentRepo()
	wc := NewPaymentWebhookController(payment.NewService(repo), nil)
	app := webhookTestApp(wc)

	resp, body := postWebhook(t, app, `{not valid json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, 0, repo.eventCount())
}

func TestHandlePaymentWebhook_UnknownPurchaseStampsEvent(t *testing.T) {
	repo := newFakePaymentRepo()
	wc := NewPaymentWebhookController(payment.NewService(repo), nil)
	app := webhookTestApp(wc)

	resp, body := postWebhook(t, app, `{"purchase_id": "`+uuid.NewString()+`"}`)
	// Still 200: retries cannot fix a reference that does not exist.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	eventID, _ := body["event_id"].(string)
	require.NotEmpty(t, eventID)
	event := repo.events[eventID]
	assert.Equal(t, models.WebhookEventStatusFailed, event.Status)
	assert.NotEmpty(t, event.ProcessingError)
}

func TestHandlePaymentWebhook_NoReferenceIsRecorded(t *testing.T) {
	repo := newFakePaymentRepo()
	wc := NewPaymentWebhookController(payment.NewService(repo), nil)
	app := webhookTestApp(wc)

	resp, body := postWebhook(t, app, `{"type": "ping"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 1, repo.eventCount())
}

func TestHandlePaymentWebhook_PersistFailureIsFatal(t *testing.T) {
	repo := newFakePaymentRepo()
	repo.failCreateEvent = true
	wc := NewPaymentWebhookController(payment.NewService(repo), nil)
	app := webhookTestApp(wc)

	resp, body := postWebhook(t, app, `{"purchase_id": "anything"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestHandlePaymentWebhook_NonPostRejected(t *testing.T) {
	wc := NewPaymentWebhookController(payment.NewService(newFakePaymentRepo()), nil)
	app := webhookTestApp(wc)

	req := httptest.NewRequest(http.MethodGet, "/payment-webhook", strings.NewReader(""))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
