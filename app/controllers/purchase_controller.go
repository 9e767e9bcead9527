package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/PageTurnApp/PageTurn/app/repository"
	"github.com/PageTurnApp/PageTurn/internal/pkg/assets"
	"github.com/PageTurnApp/PageTurn/internal/pkg/database"
	"github.com/PageTurnApp/PageTurn/internal/pkg/payment"
	"github.com/PageTurnApp/PageTurn/internal/pkg/success"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const purchaseTimeout = 10 * time.Second

// PurchaseController serves the success page's resolve and download
// endpoints through the resolver.
type PurchaseController struct {
	resolver *success.Resolver
}

func NewPurchaseController(resolver *success.Resolver) *PurchaseController {
	return &PurchaseController{resolver: resolver}
}

var purchaseController *PurchaseController

// InitializePurchaseController builds the resolver from the global factory.
// The asset linker is nil when S3 is not configured; externally hosted
// assets still resolve without it.
func InitializePurchaseController() {
	var linker success.AssetLinker
	cfg, err := assets.LoadConfig()
	if err != nil {
		log.Printf("[Purchase] asset storage config invalid, presigning disabled: %v", err)
	} else if cfg.IsEnabled() {
		store, err := assets.NewStore(cfg)
		if err != nil {
			log.Printf("[Purchase] asset store setup failed, presigning disabled: %v", err)
		} else {
			linker = store
		}
	}

	purchaseController = NewPurchaseController(success.NewResolver(
		payment.NewServiceFromDB(database.GetDB()),
		repository.GetGlobalFactory().GetBookAssetRepository(),
		linker,
	))
}

func GetPurchaseController() *PurchaseController {
	if purchaseController == nil {
		InitializePurchaseController()
	}
	return purchaseController
}

// SetPurchaseController replaces the global instance. Test use only.
func SetPurchaseController(c *PurchaseController) {
	purchaseController = c
}

// HandleResolve implements GET /api/v1/purchases/resolve?reference=. The
// page performs this fetch once on mount; every outcome is a 200 so the
// client reads the state machine from the body, not the status code.
func (pc *PurchaseController) HandleResolve(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), purchaseTimeout)
	defer cancel()

	resolution := pc.resolver.Resolve(ctx, c.Query("reference"))
	return c.JSON(resolution)
}

// HandleDownload implements POST /api/v1/purchases/:id/download.
func (pc *PurchaseController) HandleDownload(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), purchaseTimeout)
	defer cancel()

	result, err := pc.resolver.Download(ctx, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "purchase not found",
			})
		case errors.Is(err, payment.ErrDownloadNotReady):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "payment has not been confirmed yet",
			})
		case errors.Is(err, success.ErrNoAsset):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "no book asset is available yet",
			})
		default:
			log.Printf("[Purchase] download failed for %s: %v", c.Params("id"), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "download could not be prepared",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"url":      result.URL,
		"purchase": result.Purchase,
	})
}
