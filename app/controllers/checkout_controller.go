package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/PageTurnApp/PageTurn/app/models"
	"github.com/PageTurnApp/PageTurn/app/repository"
	"github.com/PageTurnApp/PageTurn/internal/pkg/cache"
	"github.com/PageTurnApp/PageTurn/internal/pkg/checkout"
	"github.com/PageTurnApp/PageTurn/internal/pkg/database"
	"github.com/PageTurnApp/PageTurn/internal/pkg/env"
	"github.com/PageTurnApp/PageTurn/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	productCacheKeyPrefix = "product:sku:"
	productCacheTTL       = 5 * time.Minute
	checkoutTimeout       = 20 * time.Second
)

// CheckoutController owns the purchase flow endpoints. The payment service
// and initiator are injectable so tests can run against fakes instead of a
// live database and provider.
type CheckoutController struct {
	productRepo repository.ProductRepository
	payments    *payment.Service
	initiator   payment.Initiator
}

func NewCheckoutController(productRepo repository.ProductRepository, payments *payment.Service, initiator payment.Initiator) *CheckoutController {
	return &CheckoutController{
		productRepo: productRepo,
		payments:    payments,
		initiator:   initiator,
	}
}

var checkoutController *CheckoutController

// InitializeCheckoutController wires the global controller from the global
// factory and environment. Called once from main after database setup.
func InitializeCheckoutController() error {
	svc := payment.NewServiceFromDB(database.GetDB())
	initiator, err := payment.NewInitiatorFromEnv(svc)
	if err != nil {
		return err
	}
	checkoutController = NewCheckoutController(
		repository.GetGlobalFactory().GetProductRepository(),
		svc,
		initiator,
	)
	return nil
}

func GetCheckoutController() *CheckoutController {
	if checkoutController == nil {
		if err := InitializeCheckoutController(); err != nil {
			log.Printf("[Checkout] initialization failed: %v", err)
		}
	}
	return checkoutController
}

// SetCheckoutController replaces the global instance. Test use only.
func SetCheckoutController(c *CheckoutController) {
	checkoutController = c
}

// currentProduct looks up the active product for the configured SKU,
// consulting the cache first. A cache miss or a stale entry falls through
// to the database; cache failures are never fatal.
func (cc *CheckoutController) currentProduct() (*models.Product, error) {
	sku := env.GetEnv("PRODUCT_SKU", "ebook-main")
	key := productCacheKeyPrefix + sku

	if raw, err := cache.Get(key); err == nil && raw != "" {
		var product models.Product
		if err := json.Unmarshal([]byte(raw), &product); err == nil && product.ID != 0 {
			return &product, nil
		}
	}

	product, err := cc.productRepo.GetActiveBySKU(sku)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(product); err == nil {
		if err := cache.Set(key, string(b), productCacheTTL); err != nil {
			log.Printf("[Checkout] product cache write failed: %v", err)
		}
	}
	return product, nil
}

// HandleCheckout implements POST /api/v1/checkout. The purchase row is
// created before the payment strategy runs so its id can travel in the
// provider metadata; an initiation failure leaves the row pending.
func (cc *CheckoutController) HandleCheckout(c *fiber.Ctx) error {
	var form checkout.Form
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	requireBilling := env.GetEnv("PAYMENT_STRATEGY", payment.StrategyHostedSession) == payment.StrategyWebhookForward
	if fieldErrs := form.Validate(requireBilling); fieldErrs != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "validation failed",
			"fields":  fieldErrs,
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), checkoutTimeout)
	defer cancel()

	product, err := cc.currentProduct()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "no product is available for purchase",
			})
		}
		log.Printf("[Checkout] product lookup failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "product lookup failed, please retry",
		})
	}

	purchase, err := cc.payments.CreatePendingPurchase(ctx, form.FullName, form.Email, product)
	if err != nil {
		log.Printf("[Checkout] purchase create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "could not create purchase",
		})
	}

	result, err := cc.initiator.Initiate(ctx, payment.InitiationRequest{
		Purchase: purchase,
		Product:  product,
		Billing:  billingDetailsFromForm(&form, requireBilling),
	})
	if err != nil {
		log.Printf("[Checkout] payment initiation failed for purchase %s: %v", purchase.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success":    false,
			"purchaseId": purchase.ID,
			"error":      "payment initiation failed",
		})
	}

	resp := fiber.Map{
		"success":    true,
		"purchaseId": purchase.ID,
	}
	if result.OptimisticSuccess {
		resp["optimisticSuccess"] = true
		resp["redirectUrl"] = "/payment-success?reference=" + purchase.ID
	} else {
		resp["checkoutUrl"] = result.RedirectURL
	}
	return c.JSON(resp)
}

// billingDetailsFromForm masks the card before it leaves the controller.
// Hosted-session deployments collect no billing data, so nil is returned.
func billingDetailsFromForm(form *checkout.Form, requireBilling bool) *payment.BillingDetails {
	if !requireBilling {
		return nil
	}
	return &payment.BillingDetails{
		Address:          form.Address,
		City:             form.City,
		State:            form.State,
		ZipCode:          form.ZipCode,
		CardType:         checkout.CardType(form.CardNumber),
		MaskedCardNumber: checkout.MaskCardNumber(form.CardNumber),
	}
}

// HandleCurrentProduct implements GET /api/v1/products/current for the
// checkout page's price display.
func (cc *CheckoutController) HandleCurrentProduct(c *fiber.Ctx) error {
	product, err := cc.currentProduct()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "no product is available for purchase",
			})
		}
		log.Printf("[Checkout] product lookup failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "product lookup failed, please retry",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"product": product,
	})
}
