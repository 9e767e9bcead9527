package checkout

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Form carries the raw customer/payment fields submitted by the checkout
// page. Billing and card fields are only collected by deployments using the
// webhook-forwarding payment strategy; for hosted-checkout deployments the
// provider's own payment page collects them.
type Form struct {
	FullName string `json:"fullName" validate:"required,min=2,max=200"`
	Email    string `json:"email" validate:"required,email,max=200"`

	Address string `json:"address" validate:"omitempty,min=5,max=255"`
	City    string `json:"city" validate:"omitempty,min=2,max=100"`
	State   string `json:"state" validate:"omitempty,min=2,max=100"`
	ZipCode string `json:"zipCode" validate:"omitempty,min=5,max=20"`

	CardNumber string `json:"cardNumber" validate:"omitempty,cardnumber"`
	CardExpiry string `json:"cardExpiry" validate:"omitempty,cardexpiry"`
	CardCvc    string `json:"cardCvc" validate:"omitempty,cardcvc"`
}

// FieldErrors maps a submitted field name to a human-readable message. It
// never leaves the form boundary as anything but a 422 response body.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

var (
	cardNumberRe = regexp.MustCompile(`^[0-9]{16}$`)
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cardCvcRe    = regexp.MustCompile(`^[0-9]{3,4}$`)
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
			return cardNumberRe.MatchString(fl.Field().String())
		})
		validate.RegisterValidation("cardexpiry", func(fl validator.FieldLevel) bool {
			return cardExpiryRe.MatchString(fl.Field().String())
		})
		validate.RegisterValidation("cardcvc", func(fl validator.FieldLevel) bool {
			return cardCvcRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

var fieldMessages = map[string]string{
	"FullName":   "Full name is required",
	"Email":      "Please enter a valid email address",
	"Address":    "Address is required",
	"City":       "City is required",
	"State":      "State is required",
	"ZipCode":    "Valid ZIP code is required",
	"CardNumber": "Please enter a valid 16-digit card number",
	"CardExpiry": "Please use MM/YY format",
	"CardCvc":    "CVC must be 3 or 4 digits",
}

var fieldJSONNames = map[string]string{
	"FullName":   "fullName",
	"Email":      "email",
	"Address":    "address",
	"City":       "city",
	"State":      "state",
	"ZipCode":    "zipCode",
	"CardNumber": "cardNumber",
	"CardExpiry": "cardExpiry",
	"CardCvc":    "cardCvc",
}

// billingFields are required (not just format-checked) when billing data is
// collected, i.e. under the webhook-forwarding strategy.
var billingFields = []string{"Address", "City", "State", "ZipCode", "CardNumber", "CardExpiry", "CardCvc"}

// Validate normalizes the form in place and checks it against the checkout
// schema. When requireBilling is true the address and card fields must be
// present as well as well-formed. Returns FieldErrors keyed by the submitted
// JSON field name, or nil when the form is valid. No I/O happens here; this
// is safe to run on every keystroke and once more on submission.
func (f *Form) Validate(requireBilling bool) FieldErrors {
	f.normalize()

	errs := FieldErrors{}
	if err := getValidator().Struct(f); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			errs["form"] = err.Error()
			return errs
		}
		for _, fe := range verrs {
			name := fe.StructField()
			errs[fieldJSONNames[name]] = fieldMessages[name]
		}
	}

	if requireBilling {
		for _, name := range billingFields {
			if f.fieldValue(name) == "" {
				if _, seen := errs[fieldJSONNames[name]]; !seen {
					errs[fieldJSONNames[name]] = fieldMessages[name]
				}
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f *Form) normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.ZipCode = strings.TrimSpace(f.ZipCode)
	f.CardNumber = FormatCardNumber(f.CardNumber)
	f.CardExpiry = FormatCardExpiry(f.CardExpiry)
	f.CardCvc = strings.TrimSpace(f.CardCvc)
}

func (f *Form) fieldValue(name string) string {
	switch name {
	case "Address":
		return f.Address
	case "City":
		return f.City
	case "State":
		return f.State
	case "ZipCode":
		return f.ZipCode
	case "CardNumber":
		return f.CardNumber
	case "CardExpiry":
		return f.CardExpiry
	case "CardCvc":
		return f.CardCvc
	default:
		return ""
	}
}
