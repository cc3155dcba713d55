package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Card brands detected from the leading digits of the PAN.
const (
	BrandVisa       = "visa"
	BrandMastercard = "mastercard"
	BrandAmex       = "amex"
	BrandDiscover   = "discover"
	BrandUnknown    = "unknown"
)

// ValidateCardNumber checks a PAN with the Luhn algorithm and returns the
// detected brand and last four digits. The full PAN is never stored; callers
// keep only what this function returns.
func ValidateCardNumber(number string) (brand, last4 string, err error) {
	digits := stripSpaces(number)
	if len(digits) < 12 || len(digits) > 19 {
		return "", "", fmt.Errorf("card number must be 12-19 digits")
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return "", "", fmt.Errorf("card number must contain only digits")
		}
	}
	if !luhnValid(digits) {
		return "", "", fmt.Errorf("card number failed checksum")
	}
	return detectBrand(digits), digits[len(digits)-4:], nil
}

// ValidateExpiry checks that month/year form a date not in the past.
func ValidateExpiry(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("expiry month must be 1-12")
	}
	if year < 100 {
		year += 2000
	}
	now := time.Now()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return fmt.Errorf("card is expired")
	}
	return nil
}

// ValidateRoutingNumber checks a US ABA routing number (9 digits, checksum).
func ValidateRoutingNumber(routing string) error {
	if len(routing) != 9 {
		return fmt.Errorf("routing number must be 9 digits")
	}
	sum := 0
	for i := 0; i < 9; i += 3 {
		a := int(routing[i] - '0')
		b := int(routing[i+1] - '0')
		c := int(routing[i+2] - '0')
		if a < 0 || a > 9 || b < 0 || b > 9 || c < 0 || c > 9 {
			return fmt.Errorf("routing number must contain only digits")
		}
		sum += 3*a + 7*b + c
	}
	if sum%10 != 0 {
		return fmt.Errorf("routing number failed checksum")
	}
	return nil
}

// ValidateAccountNumber checks a bank account number and returns its last
// four digits.
func ValidateAccountNumber(number string) (last4 string, err error) {
	digits := stripSpaces(number)
	if len(digits) < 4 || len(digits) > 17 {
		return "", fmt.Errorf("account number must be 4-17 digits")
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return "", fmt.Errorf("account number must contain only digits")
		}
	}
	return digits[len(digits)-4:], nil
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func detectBrand(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return BrandVisa
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return BrandMastercard
	case strings.HasPrefix(digits, "34") || strings.HasPrefix(digits, "37"):
		return BrandAmex
	case strings.HasPrefix(digits, "6011") || strings.HasPrefix(digits, "65"):
		return BrandDiscover
	default:
		return BrandUnknown
	}
}
