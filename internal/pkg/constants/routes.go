package constants

// Static route constants
const (
	PublicRoute         = "/"
	PaymentWebhookRoute = "/payment-webhook"
	CheckoutRoute       = "/api/v1/checkout"
	SuccessPageRoute    = "/payment-success"
)
