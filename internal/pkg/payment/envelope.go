package payment

import (
	"encoding/json"
	"strings"
)

// Notification is the provider-agnostic result of parsing an inbound
// payment webhook body. PurchaseID may be empty: a payload without a
// recognizable reference is still a valid, loggable event.
type Notification struct {
	EventType  string
	PurchaseID string
	PaymentID  string
}

// ParseNotification accepts either the flat automation shape
// ({"purchase_id": "..."}) or a provider event envelope wrapping a session
// object ({"type":"checkout.session.completed","data":{"object":{...}}}).
// It errors only when the body is not parseable JSON.
func ParseNotification(payload []byte) (*Notification, error) {
	var raw struct {
		PurchaseID string `json:"purchase_id"`
		PaymentID  string `json:"payment_id"`
		Type       string `json:"type"`
		Data       struct {
			Object struct {
				ID                string `json:"id"`
				ClientReferenceID string `json:"client_reference_id"`
				Metadata          struct {
					PurchaseID string `json:"purchase_id"`
				} `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	n := &Notification{
		EventType:  strings.TrimSpace(raw.Type),
		PurchaseID: strings.TrimSpace(raw.PurchaseID),
		PaymentID:  strings.TrimSpace(raw.PaymentID),
	}

	// Envelope fallback: the purchase reference lives on the nested session
	// object, either as client reference or in metadata.
	if n.PurchaseID == "" {
		if ref := strings.TrimSpace(raw.Data.Object.ClientReferenceID); ref != "" {
			n.PurchaseID = ref
		} else if ref := strings.TrimSpace(raw.Data.Object.Metadata.PurchaseID); ref != "" {
			n.PurchaseID = ref
		}
		if n.PurchaseID != "" && n.PaymentID == "" {
			n.PaymentID = strings.TrimSpace(raw.Data.Object.ID)
		}
	}

	return n, nil
}
