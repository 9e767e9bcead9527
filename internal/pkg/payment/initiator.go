package payment

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PageTurnApp/PageTurn/internal/pkg/env"
)

// Initiator starts payment for an already-created pending purchase. Exactly
// one implementation is active per deployment, selected by PAYMENT_STRATEGY.
type Initiator interface {
	Initiate(ctx context.Context, req InitiationRequest) (*InitiationResult, error)
}

// NewInitiatorFromEnv builds the configured strategy.
func NewInitiatorFromEnv(svc *Service) (Initiator, error) {
	strategy := strings.ToLower(strings.TrimSpace(env.GetEnv("PAYMENT_STRATEGY", StrategyHostedSession)))
	switch strategy {
	case StrategyHostedSession:
		return &HostedSessionInitiator{Client: NewSessionClientFromEnv(), Service: svc}, nil
	case StrategyWebhookForward:
		return &ForwardingInitiator{
			Forwarder:    NewForwarderFromEnv(),
			Service:      svc,
			PublicDomain: strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/"),
		}, nil
	default:
		return nil, fmt.Errorf("unknown PAYMENT_STRATEGY %q (want %q or %q)", strategy, StrategyHostedSession, StrategyWebhookForward)
	}
}

// HostedSessionInitiator creates a provider-hosted checkout session and
// redirects the browser there. The purchase stays pending; only the webhook
// receiver completes it.
type HostedSessionInitiator struct {
	Client  *SessionClient
	Service *Service
}

func (i *HostedSessionInitiator) Initiate(ctx context.Context, req InitiationRequest) (*InitiationResult, error) {
	if req.Purchase == nil {
		return nil, initiationErr("purchase is required", nil)
	}

	session, err := i.Client.CreateCheckoutSession(ctx, SessionParams{
		PurchaseID:    req.Purchase.ID,
		CustomerName:  req.Purchase.CustomerName,
		CustomerEmail: req.Purchase.CustomerEmail,
		Product:       req.Product,
	})
	if err != nil {
		return nil, err
	}

	// Backfill the session id so the row can be reconciled by payment_id
	// too. The redirect must not fail on this write.
	if err := i.Service.SetPaymentID(ctx, req.Purchase.ID, session.ID); err != nil {
		log.Printf("purchase %s: failed to store session id %s: %v", req.Purchase.ID, session.ID, err)
	}

	return &InitiationResult{RedirectURL: session.URL}, nil
}

// ForwardingInitiator posts the checkout payload to an external automation
// webhook and then optimistically marks the purchase completed. This is a
// knowingly weaker consistency model kept as an alternate configuration: the
// automation endpoint may silently reject the payload after the local state
// has already been marked complete.
type ForwardingInitiator struct {
	Forwarder    *Forwarder
	Service      *Service
	PublicDomain string
}

func (i *ForwardingInitiator) Initiate(ctx context.Context, req InitiationRequest) (*InitiationResult, error) {
	if req.Purchase == nil {
		return nil, initiationErr("purchase is required", nil)
	}

	payload := ForwardPayload{
		PurchaseID:    req.Purchase.ID,
		CustomerName:  req.Purchase.CustomerName,
		CustomerEmail: req.Purchase.CustomerEmail,
		Amount:        req.Purchase.Amount,
		SuccessURL:    i.PublicDomain + "/payment-success?reference=" + req.Purchase.ID,
		CancelURL:     i.PublicDomain + "/checkout",
	}
	if req.Product != nil {
		payload.ProductSKU = req.Product.SKU
		payload.ProductTitle = req.Product.Title
		payload.Currency = req.Product.Currency
	}
	if req.Billing != nil {
		payload.BillingAddress = req.Billing.Address
		payload.BillingCity = req.Billing.City
		payload.BillingState = req.Billing.State
		payload.BillingZip = req.Billing.ZipCode
		payload.CardType = req.Billing.CardType
		payload.CardNumber = req.Billing.MaskedCardNumber
	}

	if err := i.Forwarder.Forward(ctx, payload); err != nil {
		return nil, initiationErr("failed to forward checkout to automation webhook", err)
	}

	// Optimistic completion: no confirmation channel exists for this
	// strategy, so the purchase is completed in the same request path.
	if err := i.Service.MarkCompleted(ctx, req.Purchase.ID, ""); err != nil {
		return nil, fmt.Errorf("checkout forwarded but completion write failed for purchase %s: %w", req.Purchase.ID, err)
	}

	return &InitiationResult{OptimisticSuccess: true}, nil
}
