package router

import (
	"github.com/PageTurnApp/PageTurn/app/controllers"
	"github.com/PageTurnApp/PageTurn/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Initialize controllers with repositories before any route can fire
	if err := controllers.InitializeCheckoutController(); err != nil {
		panic("checkout controller setup failed: " + err.Error())
	}
	controllers.InitializePaymentWebhookController()
	controllers.InitializePurchaseController()
	controllers.InitializeAdminAssetController()

	// The provider posts here; everything else lives under /api/v1. Fiber
	// answers 405 for other methods on this path by itself.
	app.Post(constants.PaymentWebhookRoute, func(c *fiber.Ctx) error {
		return controllers.GetPaymentWebhookController().HandlePaymentWebhook(c)
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
