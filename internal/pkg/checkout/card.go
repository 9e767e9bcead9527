package checkout

import "strings"

var digitReplacer = strings.NewReplacer(" ", "", "-", "", "/", "")

// FormatCardNumber strips everything but digits and caps the result at 16
// characters, matching the input mask on the checkout page.
func FormatCardNumber(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 16 {
				break
			}
		}
	}
	return b.String()
}

// FormatCardExpiry reduces input to digits and re-inserts the slash after
// the month, producing MM/YY.
func FormatCardExpiry(input string) string {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == 4 {
				break
			}
		}
	}
	cleaned := digits.String()
	if len(cleaned) > 2 {
		return cleaned[:2] + "/" + cleaned[2:]
	}
	return cleaned
}

// CardType detects the card network from the leading digits.
func CardType(cardNumber string) string {
	n := digitReplacer.Replace(strings.TrimSpace(cardNumber))
	if n == "" {
		return "Unknown"
	}

	switch {
	case n[0] == '4':
		return "Visa"
	}
	if len(n) >= 2 {
		switch n[:2] {
		case "51", "52", "53", "54", "55":
			return "MasterCard"
		case "34", "37":
			return "American Express"
		case "60", "65":
			return "Discover"
		}
	}
	return "Unknown"
}

// MaskCardNumber keeps only the last four digits. Forwarded payloads must
// never carry the full PAN.
func MaskCardNumber(cardNumber string) string {
	n := digitReplacer.Replace(strings.TrimSpace(cardNumber))
	if len(n) < 4 {
		return ""
	}
	return "**** **** **** " + n[len(n)-4:]
}
