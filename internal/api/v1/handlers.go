package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/PageTurnApp/PageTurn/app/controllers"
	"github.com/PageTurnApp/PageTurn/internal/pkg/middleware"
)

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// PostCheckout validates the checkout form, creates the pending purchase
// and starts the configured payment strategy.
func (s *APIServer) PostCheckout(c *fiber.Ctx) error {
	return controllers.GetCheckoutController().HandleCheckout(c)
}

// GetCurrentProduct returns the active product for the checkout page.
func (s *APIServer) GetCurrentProduct(c *fiber.Ctx) error {
	return controllers.GetCheckoutController().HandleCurrentProduct(c)
}

// GetPurchaseResolve maps a success-page reference to its purchase state.
func (s *APIServer) GetPurchaseResolve(c *fiber.Ctx) error {
	return controllers.GetPurchaseController().HandleResolve(c)
}

// PostPurchaseDownload records a download and returns the asset URL.
func (s *APIServer) PostPurchaseDownload(c *fiber.Ctx) error {
	return controllers.GetPurchaseController().HandleDownload(c)
}

// PostAdminAsset registers a book asset (API key protected).
func (s *APIServer) PostAdminAsset(c *fiber.Ctx) error {
	return controllers.GetAdminAssetController().HandleRegisterAsset(c)
}

// GetAdminAssets lists book assets newest first (API key protected).
func (s *APIServer) GetAdminAssets(c *fiber.Ctx) error {
	return controllers.GetAdminAssetController().HandleListAssets(c)
}

// PostAdminAssetUploadURL issues a presigned PUT URL (API key protected).
func (s *APIServer) PostAdminAssetUploadURL(c *fiber.Ctx) error {
	return controllers.GetAdminAssetController().HandleUploadURL(c)
}

// RegisterHandlers attaches the v1 routes to the given router group.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	router.Post("/checkout", s.PostCheckout)
	router.Get("/products/current", s.GetCurrentProduct)
	router.Get("/purchases/resolve", s.GetPurchaseResolve)
	router.Post("/purchases/:id/download", s.PostPurchaseDownload)

	admin := router.Group("/admin", middleware.APIKeyAuthMiddleware())
	admin.Post("/assets", s.PostAdminAsset)
	admin.Get("/assets", s.GetAdminAssets)
	admin.Post("/assets/upload-url", s.PostAdminAssetUploadURL)
}
