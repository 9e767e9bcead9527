package payment

import (
	"github.com/PageTurnApp/PageTurn/app/models"
)

// Payment strategy identifiers, selected via PAYMENT_STRATEGY. The two
// strategies are mutually exclusive per deployment.
const (
	StrategyHostedSession  = "hosted"
	StrategyWebhookForward = "forward"
)

// BillingDetails carries the billing fields collected by the checkout form
// under the forwarding strategy. Card data is pre-masked by the caller; the
// full PAN never reaches this package.
type BillingDetails struct {
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zip_code"`
	CardType         string `json:"card_type"`
	MaskedCardNumber string `json:"masked_card_number"`
}

// InitiationRequest is the input to a payment strategy. The purchase row
// already exists (status pending) so its id can be embedded in provider
// metadata and payloads.
type InitiationRequest struct {
	Purchase *models.Purchase
	Product  *models.Product
	Billing  *BillingDetails
}

// InitiationResult is what a strategy hands back to the checkout flow:
// either a provider-hosted redirect, or an optimistic local completion for
// deployments without a synchronous confirmation channel.
type InitiationResult struct {
	RedirectURL       string `json:"redirectUrl,omitempty"`
	OptimisticSuccess bool   `json:"optimisticSuccess,omitempty"`
}

// InitiationError is returned for any failure to start a payment: network
// errors, non-success statuses and malformed provider responses all map
// here. The purchase stays pending in every case.
type InitiationError struct {
	Message string
	Err     error
}

func (e *InitiationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *InitiationError) Unwrap() error {
	return e.Err
}

func initiationErr(message string, err error) *InitiationError {
	return &InitiationError{Message: message, Err: err}
}
