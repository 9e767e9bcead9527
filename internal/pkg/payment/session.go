package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PageTurnApp/PageTurn/app/models"
	"github.com/PageTurnApp/PageTurn/internal/pkg/env"
)

const defaultSessionURL = "https://api.stripe.com/v1/checkout/sessions"

// SessionClient creates hosted checkout sessions against the configured
// payment provider. The provider hosts the payment UI; completion is
// reported back asynchronously through the webhook receiver.
type SessionClient struct {
	SecretKey    string
	SessionURL   string
	PublicDomain string

	HTTPClient *http.Client
}

// SessionParams identifies the purchase a checkout session pays for. The
// purchase id travels as client reference and metadata so the webhook can
// correlate the completion back to the row.
type SessionParams struct {
	PurchaseID    string
	CustomerName  string
	CustomerEmail string
	Product       *models.Product
}

// Session is the provider's session handle: an id to store on the purchase
// and a URL to send the browser to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func NewSessionClientFromEnv() *SessionClient {
	return &SessionClient{
		SecretKey:    strings.TrimSpace(env.GetEnv("PAYMENT_SECRET_KEY", "")),
		SessionURL:   strings.TrimSpace(env.GetEnv("PAYMENT_SESSION_URL", defaultSessionURL)),
		PublicDomain: strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SuccessURL is where the provider sends the browser after payment; the
// reference query parameter carries the purchase id back to the site.
func (c *SessionClient) SuccessURL(purchaseID string) string {
	return c.PublicDomain + "/payment-success?reference=" + url.QueryEscape(purchaseID)
}

// CancelURL returns the browser to the checkout page on abandonment.
func (c *SessionClient) CancelURL() string {
	return c.PublicDomain + "/checkout"
}

// CreateCheckoutSession creates one hosted session for the given purchase.
// Any transport failure, non-success status or malformed body surfaces as an
// InitiationError; no local state is touched here.
func (c *SessionClient) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, initiationErr("PAYMENT_SECRET_KEY is not configured", nil)
	}
	if strings.TrimSpace(params.PurchaseID) == "" {
		return nil, initiationErr("purchase id is required", nil)
	}
	if params.Product == nil {
		return nil, initiationErr("product is required", nil)
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", params.Product.Currency)
	form.Set("line_items[0][price_data][product_data][name]", params.Product.Title)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.Product.PriceCents(), 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", c.SuccessURL(params.PurchaseID))
	form.Set("cancel_url", c.CancelURL())
	form.Set("client_reference_id", params.PurchaseID)
	form.Set("customer_email", params.CustomerEmail)
	form.Set("metadata[purchase_id]", params.PurchaseID)
	form.Set("metadata[customer_name]", params.CustomerName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SessionURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, initiationErr("failed to build checkout session request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, initiationErr("checkout session request failed", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, initiationErr(
			fmt.Sprintf("checkout session creation failed: status=%d body=%s", resp.StatusCode, string(body)), nil)
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, initiationErr("malformed checkout session response", err)
	}
	if strings.TrimSpace(session.URL) == "" {
		return nil, initiationErr("no checkout URL returned by payment provider", errors.New("empty url"))
	}
	return &session, nil
}
