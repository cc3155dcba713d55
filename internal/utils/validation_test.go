package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCardNumber(t *testing.T) {
	tests := []struct {
		name      string
		number    string
		wantBrand string
		wantLast4 string
		wantErr   bool
	}{
		{"visa", "4242 4242 4242 4242", BrandVisa, "4242", false},
		{"mastercard", "5555555555554444", BrandMastercard, "4444", false},
		{"amex", "378282246310005", BrandAmex, "0005", false},
		{"discover", "6011111111111117", BrandDiscover, "1117", false},
		{"bad checksum", "4242424242424241", "", "", true},
		{"too short", "42424242", "", "", true},
		{"letters", "4242abcd42424242", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand, last4, err := ValidateCardNumber(tt.number)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBrand, brand)
			assert.Equal(t, tt.wantLast4, last4)
		})
	}
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now()

	assert.NoError(t, ValidateExpiry(int(now.Month()), now.Year()))
	assert.NoError(t, ValidateExpiry(12, now.Year()+1))
	assert.Error(t, ValidateExpiry(1, now.Year()-1))
	assert.Error(t, ValidateExpiry(13, now.Year()+1))
	assert.Error(t, ValidateExpiry(0, now.Year()+1))
}

func TestValidateRoutingNumber(t *testing.T) {
	// 021000021 is a well-known valid ABA number
	assert.NoError(t, ValidateRoutingNumber("021000021"))
	assert.Error(t, ValidateRoutingNumber("021000022"))
	assert.Error(t, ValidateRoutingNumber("12345"))
	assert.Error(t, ValidateRoutingNumber("02100002a"))
}

func TestValidateAccountNumber(t *testing.T) {
	last4, err := ValidateAccountNumber("000123456789")
	require.NoError(t, err)
	assert.Equal(t, "6789", last4)

	_, err = ValidateAccountNumber("123")
	assert.Error(t, err)

	_, err = ValidateAccountNumber("12345x789")
	assert.Error(t, err)
}
