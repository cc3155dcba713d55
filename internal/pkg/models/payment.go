package models

import (
	"time"
)

// PaymentMethodType discriminates the payment-method union.
type PaymentMethodType string

const (
	PaymentMethodCard PaymentMethodType = "card"
	PaymentMethodBank PaymentMethodType = "bank"
)

// Bank account verification states
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
)

// CreditCard is a tokenized card reference; only the last four digits
// of the PAN are ever stored.
type CreditCard struct {
	ID             string    `json:"id" db:"id"`
	CardholderName string    `json:"cardholder_name" db:"cardholder_name"`
	Last4          string    `json:"last4" db:"last4"`
	ExpiryMonth    int       `json:"expiry_month" db:"expiry_month"`
	ExpiryYear     int       `json:"expiry_year" db:"expiry_year"`
	Brand          string    `json:"brand" db:"brand"`
	IsDefault      bool      `json:"is_default" db:"is_default"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// BankAccount is a linked bank account, last four digits only.
type BankAccount struct {
	ID                 string    `json:"id" db:"id"`
	AccountName        string    `json:"account_name" db:"account_name"`
	AccountType        string    `json:"account_type" db:"account_type"`
	Last4              string    `json:"last4" db:"last4"`
	RoutingNumber      string    `json:"routing_number" db:"routing_number"`
	VerificationStatus string    `json:"verification_status" db:"verification_status"`
	IsDefault          bool      `json:"is_default" db:"is_default"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// PaymentMethod is a tagged union over cards and bank accounts. Exactly one
// of Card/Bank is non-nil, matching Type.
type PaymentMethod struct {
	Type PaymentMethodType `json:"type"`
	Card *CreditCard       `json:"card,omitempty"`
	Bank *BankAccount      `json:"bank,omitempty"`
}

// ID returns the identifier of whichever variant is set.
func (pm PaymentMethod) ID() string {
	switch pm.Type {
	case PaymentMethodCard:
		if pm.Card != nil {
			return pm.Card.ID
		}
	case PaymentMethodBank:
		if pm.Bank != nil {
			return pm.Bank.ID
		}
	}
	return ""
}
