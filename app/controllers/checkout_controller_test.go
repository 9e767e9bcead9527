package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PageTurnApp/PageTurn/app/models"
	"github.com/PageTurnApp/PageTurn/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInitiator struct {
	result *payment.InitiationResult
	err    error

	gotReq payment.InitiationRequest
}

func (f *fakeInitiator) Initiate(ctx context.Context, req payment.InitiationRequest) (*payment.InitiationResult, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func checkoutTestApp(cc *CheckoutController) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/checkout", cc.HandleCheckout)
	app.Get("/api/v1/products/current", cc.HandleCurrentProduct)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func validCheckoutBody() map[string]string {
	return map[string]string{
		"fullName": "Jane Reader",
		"email":    "jane@example.com",
	}
}

func TestHandleCheckout_HostedSuccess(t *testing.T) {
	t.Setenv("PRODUCT_SKU", uuid.NewString()) // keep the product cache out of the way

	paymentRepo := newFakePaymentRepo()
	initiator := &fakeInitiator{result: &payment.InitiationResult{RedirectURL: "https://pay.example.com/s/cs_1"}}
	cc := NewCheckoutController(&fakeProductRepo{product: activeProduct()}, payment.NewService(paymentRepo), initiator)
	app := checkoutTestApp(cc)

	resp, body := postJSON(t, app, "/api/v1/checkout", validCheckoutBody())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://pay.example.com/s/cs_1", body["checkoutUrl"])

	purchaseID, _ := body["purchaseId"].(string)
	require.NotEmpty(t, purchaseID)

	// Purchase exists before initiation ran and stays pending.
	assert.Equal(t, purchaseID, initiator.gotReq.Purchase.ID)
	stored, err := paymentRepo.GetPurchaseByID(purchaseID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	assert.Equal(t, 29.99, stored.Amount)
}

func TestHandleCheckout_ValidationErrors(t *testing.T) {
	cc := NewCheckoutController(&fakeProductRepo{product: activeProduct()}, payment.NewService(newFakePaymentRepo()), &fakeInitiator{})
	app := checkoutTestApp(cc)

	resp, body := postJSON(t, app, "/api/v1/checkout", map[string]string{"fullName": "", "email": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	fields, ok := body["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Full name is required", fields["fullName"])
	assert.Equal(t, "Please enter a valid email address", fields["email"])
}

func TestHandleCheckout_NoProduct(t *testing.T) {
	t.Setenv("PRODUCT_SKU", uuid.NewString())

	cc := NewCheckoutController(&fakeProductRepo{}, payment.NewService(newFakePaymentRepo()), &fakeInitiator{})
	app := checkoutTestApp(cc)

	resp, body := postJSON(t, app, "/api/v1/checkout", validCheckoutBody())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestHandleCheckout_ProductStoreDown(t *testing.T) {
	t.Setenv("PRODUCT_SKU", uuid.NewString())

	cc := NewCheckoutController(&fakeProductRepo{err: errors.New("connection refused")}, payment.NewService(newFakePaymentRepo()), &fakeInitiator{})
	app := checkoutTestApp(cc)

	resp, _ := postJSON(t, app, "/api/v1/checkout", validCheckoutBody())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleCheckout_InitiationFailureLeavesPending(t *testing.T) {
	t.Setenv("PRODUCT_SKU", uuid.NewString())

	paymentRepo := newFakePaymentRepo()
	initiator := &fakeInitiator{err: &payment.InitiationError{Message: "provider down"}}
	cc := NewCheckoutController(&fakeProductRepo{product: activeProduct()}, payment.NewService(paymentRepo), initiator)
	app := checkoutTestApp(cc)

	resp, body := postJSON(t, app, "/api/v1/checkout", validCheckoutBody())
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	purchaseID, _ := body["purchaseId"].(string)
	require.NotEmpty(t, purchaseID)
	stored, err := paymentRepo.GetPurchaseByID(purchaseID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
}

func TestHandleCheckout_ForwardStrategyRequiresBilling(t *testing.T) {
	t.Setenv("PRODUCT_SKU", uuid.NewString())
	t.Setenv("PAYMENT_STRATEGY", payment.StrategyWebhookForward)

	cc := NewCheckoutController(&fakeProductRepo{product: activeProduct()}, payment.NewService(newFakePaymentRepo()), &fakeInitiator{})
	app := checkoutTestApp(cc)

	resp, body := postJSON(t, app, "/api/v1/checkout", validCheckoutBody())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	fields, ok := body["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "cardNumber")
	assert.Contains(t, fields, "address")
}

func TestHandleCheckout_ForwardStrategyMasksCard(t *testing.T) {
	t.Setenv("PRODUCT_SKU", uuid.NewString())
	t.Setenv("PAYMENT_STRATEGY", payment.StrategyWebhookForward)

	initiator := &fakeInitiator{result: &payment.InitiationResult{OptimisticSuccess: true}}
	cc := NewCheckoutController(&fakeProductRepo{product: activeProduct()}, payment.NewService(newFakePaymentRepo()), initiator)
	app := checkoutTestApp(cc)

	body := map[string]string{
		"fullName":   "Jane Reader",
		"email":      "jane@example.com",
		"address":    "12 Library Lane",
		"city":       "Booktown",
		"state":      "CA",
		"zipCode":    "90210",
		"cardNumber": "4242 4242 4242 4242",
		"cardExpiry": "12/27",
		"cardCvc":    "123",
	}
	resp, parsed := postJSON(t, app, "/api/v1/checkout", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["optimisticSuccess"])
	redirect, _ := parsed["redirectUrl"].(string)
	assert.Contains(t, redirect, "/payment-success?reference=")

	require.NotNil(t, initiator.gotReq.Billing)
	assert.Equal(t, "Visa", initiator.gotReq.Billing.CardType)
	assert.Equal(t, "**** **** **** 4242", initiator.gotReq.Billing.MaskedCardNumber)
}

func TestHandleCurrentProduct(t *testing.T) {
	t.Setenv("PRODUCT_SKU", uuid.NewString())

	cc := NewCheckoutController(&fakeProductRepo{product: activeProduct()}, payment.NewService(newFakePaymentRepo()), &fakeInitiator{})
	app := checkoutTestApp(cc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/current", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	product, ok := parsed["product"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "The Complete Guide", product["title"])
}
