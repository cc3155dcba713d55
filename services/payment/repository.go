package payment

import (
	"context"
	"errors"

	"github.com/brickvest/brickvest/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/brickvest/brickvest/services/payment PaymentRepo

// Sentinel errors shared by every backend implementation.
var (
	ErrNotFound        = errors.New("payment method not found")
	ErrAgreementExists = errors.New("investor agreement already accepted")
)

// PaymentRepo stores the payment methods, transactions and agreement of the
// user it was constructed for. Write failures are logged and returned
// unchanged; read failures are logged and degrade to an empty result.
type PaymentRepo interface {
	// Credit cards
	SaveCreditCard(ctx context.Context, card *models.CreditCard) error
	GetCreditCards(ctx context.Context) ([]models.CreditCard, error)
	DeleteCreditCard(ctx context.Context, cardID string) error

	// Bank accounts
	SaveBankAccount(ctx context.Context, account *models.BankAccount) error
	GetBankAccounts(ctx context.Context) ([]models.BankAccount, error)
	DeleteBankAccount(ctx context.Context, accountID string) error

	// SetDefaultPaymentMethod flags the addressed method as the single
	// default within its own collection (cards and banks independently).
	SetDefaultPaymentMethod(ctx context.Context, id string, typ models.PaymentMethodType) error

	// Transactions
	SaveTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, txnID string, status models.TransactionStatus) error

	// Investor agreement; GetInvestorAgreement returns (nil, nil) when the
	// user has not accepted yet.
	SaveInvestorAgreement(ctx context.Context, agreement *models.InvestorAgreement) error
	GetInvestorAgreement(ctx context.Context) (*models.InvestorAgreement, error)

	// Destroy releases backend handles held by this instance.
	Destroy()
}
