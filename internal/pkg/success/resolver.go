package success

import (
	"context"
	"errors"
	"strings"

	"github.com/PageTurnApp/PageTurn/app/models"
	"github.com/PageTurnApp/PageTurn/app/repository"
	"github.com/PageTurnApp/PageTurn/internal/pkg/payment"
	"gorm.io/gorm"
)

// ConnectionStatus mirrors the success page's top-level lifecycle:
// checking until the store answers, then connected or error.
type ConnectionStatus string

const (
	StatusChecking  ConnectionStatus = "checking"
	StatusConnected ConnectionStatus = "connected"
	StatusError     ConnectionStatus = "error"
)

// DisplayState is what the success page shows once connected.
const (
	StateNoPurchase = "no_purchase" // terminal: no reference, or unknown reference
	StatePreparing  = "preparing"   // purchase exists, payment not confirmed yet
	StateCompleted  = "completed"   // download enabled
)

// ErrNoAsset is returned when a download is requested but no book asset has
// been registered yet.
var ErrNoAsset = errors.New("no book asset registered")

// AssetLinker turns a stored asset into a URL the browser can fetch.
type AssetLinker interface {
	DownloadURL(ctx context.Context, asset *models.BookAsset) (string, error)
}

// Resolution is the answer for one page load. The flow performs a single
// fetch on mount; it never polls.
type Resolution struct {
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	State            string           `json:"state"`
	DownloadReady    bool             `json:"download_ready"`
	Purchase         *models.Purchase `json:"purchase,omitempty"`
}

// DownloadResult carries the asset location plus the refreshed purchase so
// the page can display the updated counter.
type DownloadResult struct {
	URL      string           `json:"url"`
	Purchase *models.Purchase `json:"purchase"`
}

// Resolver correlates the browser's post-payment return (the ?reference=
// query parameter) with its purchase row and gates downloads on confirmed
// payment.
type Resolver struct {
	payments *payment.Service
	assets   repository.BookAssetRepository
	linker   AssetLinker
}

func NewResolver(payments *payment.Service, assets repository.BookAssetRepository, linker AssetLinker) *Resolver {
	return &Resolver{payments: payments, assets: assets, linker: linker}
}

// Resolve maps a reference identifier to the page state. A missing or
// unknown reference is the terminal no-purchase state with downloads
// disabled; a store failure is the error state (the page offers a retry,
// it does not crash).
func (r *Resolver) Resolve(ctx context.Context, reference string) *Resolution {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return &Resolution{
			ConnectionStatus: StatusConnected,
			State:            StateNoPurchase,
		}
	}

	purchase, err := r.payments.GetPurchase(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Resolution{
				ConnectionStatus: StatusConnected,
				State:            StateNoPurchase,
			}
		}
		return &Resolution{
			ConnectionStatus: StatusError,
			State:            StateNoPurchase,
		}
	}

	res := &Resolution{
		ConnectionStatus: StatusConnected,
		State:            StatePreparing,
		Purchase:         purchase,
	}
	if purchase.IsCompleted() {
		res.State = StateCompleted
		res.DownloadReady = true
	}
	return res
}

// Download records one download and returns the current asset location.
// The counter cannot advance unless the purchase is completed; the
// repository enforces that even when two clicks race.
func (r *Resolver) Download(ctx context.Context, purchaseID string) (*DownloadResult, error) {
	purchase, err := r.payments.RecordDownload(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	asset, err := r.assets.GetLatest()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoAsset
		}
		return nil, err
	}

	url := asset.AssetURL
	if !asset.IsExternal() && r.linker != nil {
		if url, err = r.linker.DownloadURL(ctx, asset); err != nil {
			return nil, err
		}
	}

	return &DownloadResult{URL: url, Purchase: purchase}, nil
}
