package payment

import (
	"context"

	"github.com/brickvest/brickvest/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/brickvest/brickvest/services/payment PaymentUC

// AddCreditCardRequest carries the raw form input for adding a card. The
// full number is validated client-side style (Luhn, expiry) and reduced to
// brand + last4 before anything is stored.
type AddCreditCardRequest struct {
	CardholderName string `json:"cardholder_name"`
	CardNumber     string `json:"card_number"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	IsDefault      bool   `json:"is_default"`
}

// AddBankAccountRequest carries the raw form input for linking a bank account.
type AddBankAccountRequest struct {
	AccountName   string `json:"account_name"`
	AccountType   string `json:"account_type"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
	IsDefault     bool   `json:"is_default"`
}

// PaymentUC is the payment-method business layer. The userID selects the
// repository instance through the factory; an empty id addresses the
// on-device store.
type PaymentUC interface {
	AddCreditCard(ctx context.Context, userID string, req *AddCreditCardRequest) (*models.CreditCard, error)
	GetCreditCards(ctx context.Context, userID string) ([]models.CreditCard, error)
	DeleteCreditCard(ctx context.Context, userID, cardID string) error

	AddBankAccount(ctx context.Context, userID string, req *AddBankAccountRequest) (*models.BankAccount, error)
	GetBankAccounts(ctx context.Context, userID string) ([]models.BankAccount, error)
	DeleteBankAccount(ctx context.Context, userID, accountID string) error

	SetDefaultPaymentMethod(ctx context.Context, userID, id string, typ models.PaymentMethodType) error
	GetPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error)

	GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, userID, txnID string, status models.TransactionStatus) error

	AcceptInvestorAgreement(ctx context.Context, userID, version, content string) (*models.InvestorAgreement, error)
	GetInvestorAgreement(ctx context.Context, userID string) (*models.InvestorAgreement, error)
}

// RepoProvider resolves the active payment repository for a user. The
// service factory implements it.
type RepoProvider interface {
	PaymentRepository(userID string) PaymentRepo
}
