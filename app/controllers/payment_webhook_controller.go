package controllers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/PageTurnApp/PageTurn/internal/pkg/database"
	"github.com/PageTurnApp/PageTurn/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
)

const webhookTimeout = 15 * time.Second

// PaymentWebhookController receives payment-confirmed notifications from
// the provider and flips the referenced purchase to completed. The service
// is injectable for tests.
type PaymentWebhookController struct {
	payments  *payment.Service
	forwarder *payment.Forwarder
}

func NewPaymentWebhookController(payments *payment.Service, forwarder *payment.Forwarder) *PaymentWebhookController {
	return &PaymentWebhookController{payments: payments, forwarder: forwarder}
}

var paymentWebhookController *PaymentWebhookController

func InitializePaymentWebhookController() {
	paymentWebhookController = NewPaymentWebhookController(
		payment.NewServiceFromDB(database.GetDB()),
		payment.NewForwarderFromEnv(),
	)
}

func GetPaymentWebhookController() *PaymentWebhookController {
	if paymentWebhookController == nil {
		InitializePaymentWebhookController()
	}
	return paymentWebhookController
}

// SetPaymentWebhookController replaces the global instance. Test use only.
func SetPaymentWebhookController(c *PaymentWebhookController) {
	paymentWebhookController = c
}

// HandlePaymentWebhook implements POST /payment-webhook.
//
// Ordering matters: the body is parsed before anything is persisted, so an
// unparsable request leaves no event row. Once the event is stored the
// endpoint answers 200 even when completion fails locally; the failure is
// stamped on the event row instead, so the provider does not retry forever
// against a problem retries cannot fix.
func (wc *PaymentWebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	notification, err := payment.ParseNotification(rawBody)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid JSON payload",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	event, err := wc.payments.RecordWebhookEvent(ctx, rawBody)
	if err != nil {
		log.Printf("[Webhook] event persist failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "could not record webhook event",
		})
	}

	if notification.PurchaseID == "" {
		_ = wc.payments.MarkWebhookProcessed(ctx, event.ID, nil)
		return c.JSON(fiber.Map{
			"success":  true,
			"message":  "event recorded, no purchase reference",
			"event_id": event.ID,
		})
	}

	if err := wc.payments.MarkCompleted(ctx, notification.PurchaseID, notification.PaymentID); err != nil {
		log.Printf("[Webhook] completing purchase %s failed: %v", notification.PurchaseID, err)
		_ = wc.payments.MarkWebhookProcessed(ctx, event.ID, err)
		return c.JSON(fiber.Map{
			"success":  false,
			"error":    "purchase update failed",
			"event_id": event.ID,
		})
	}
	_ = wc.payments.MarkWebhookProcessed(ctx, event.ID, nil)

	wc.relay(rawBody, event.ID)

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "purchase marked as completed",
		"event_id": event.ID,
	})
}

// relay forwards the confirmed payload to the automation webhook when one
// is configured. Best effort: a relay failure is logged and nothing else.
func (wc *PaymentWebhookController) relay(rawBody []byte, eventID string) {
	if wc.forwarder == nil || !wc.forwarder.Enabled() {
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		payload = map[string]interface{}{"raw": string(rawBody)}
	}
	payload["event_id"] = eventID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()
		if err := wc.forwarder.Forward(ctx, payload); err != nil {
			log.Printf("[Webhook] relay to automation webhook failed: %v", err)
		}
	}()
}
