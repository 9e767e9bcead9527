package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PageTurnApp/PageTurn/internal/pkg/env"
)

// Forwarder posts payment payloads to an external automation webhook. There
// is no synchronous confirmation channel behind it; callers that treat a
// successful forward as payment completion accept a documented
// weak-consistency tradeoff (the automation may still reject the payload
// after local state says completed).
type Forwarder struct {
	WebhookURL string

	HTTPClient *http.Client
}

func NewForwarderFromEnv() *Forwarder {
	return &Forwarder{
		WebhookURL: strings.TrimSpace(env.GetEnv("AUTOMATION_WEBHOOK_URL", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Enabled reports whether an automation endpoint is configured.
func (f *Forwarder) Enabled() bool {
	return strings.TrimSpace(f.WebhookURL) != ""
}

// ForwardPayload is the JSON shape posted to the automation webhook for a
// checkout. Card data is masked metadata only.
type ForwardPayload struct {
	PurchaseID    string  `json:"purchase_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	ProductSKU    string  `json:"product_sku"`
	ProductTitle  string  `json:"product_title"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`

	BillingAddress string `json:"billing_address,omitempty"`
	BillingCity    string `json:"billing_city,omitempty"`
	BillingState   string `json:"billing_state,omitempty"`
	BillingZip     string `json:"billing_zip,omitempty"`
	CardType       string `json:"card_type,omitempty"`
	CardNumber     string `json:"card_number,omitempty"` // masked, last four only
	SuccessURL     string `json:"success_url"`
	CancelURL      string `json:"cancel_url"`
}

// Forward posts the given payload as JSON. Timeouts and non-success
// statuses are errors; the response body is otherwise ignored.
func (f *Forwarder) Forward(ctx context.Context, payload interface{}) error {
	if !f.Enabled() {
		return fmt.Errorf("AUTOMATION_WEBHOOK_URL is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("automation webhook rejected payload: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}
