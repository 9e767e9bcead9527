package checkout

import "testing"

func TestFormatCardNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "4242 4242 4242 4242", want: "4242424242424242"},
		{in: "4242-4242-4242-4242", want: "4242424242424242"},
		{in: "42424242424242429999", want: "4242424242424242"},
		{in: "abc", want: ""},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := FormatCardNumber(tt.in); got != tt.want {
			t.Fatalf("FormatCardNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCardExpiry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1227", want: "12/27"},
		{in: "12/27", want: "12/27"},
		{in: "12", want: "12"},
		{in: "1", want: "1"},
		{in: "122734", want: "12/27"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := FormatCardExpiry(tt.in); got != tt.want {
			t.Fatalf("FormatCardExpiry(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCardType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "4242424242424242", want: "Visa"},
		{in: "5555555555554444", want: "MasterCard"},
		{in: "378282246310005", want: "American Express"},
		{in: "6011111111111117", want: "Discover"},
		{in: "6511111111111117", want: "Discover"},
		{in: "9999999999999999", want: "Unknown"},
		{in: "", want: "Unknown"},
	}

	for _, tt := range tests {
		if got := CardType(tt.in); got != tt.want {
			t.Fatalf("CardType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskCardNumber(t *testing.T) {
	if got := MaskCardNumber("4242 4242 4242 4242"); got != "**** **** **** 4242" {
		t.Fatalf("unexpected mask: %q", got)
	}
	if got := MaskCardNumber("42"); got != "" {
		t.Fatalf("expected empty mask for short input, got %q", got)
	}
}
