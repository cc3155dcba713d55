package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/internal/utils"
	"github.com/brickvest/brickvest/services/payment"
)

// ErrStatusRegression is returned when a transaction status update would
// move the status backwards. Statuses only ever advance.
var ErrStatusRegression = errors.New("transaction status cannot regress")

// PaymentUC implements payment.PaymentUC on top of whichever repository the
// factory currently serves.
type PaymentUC struct {
	repos payment.RepoProvider
	log   *logger.ZapLogger
}

// NewPaymentUC creates the payment usecase.
func NewPaymentUC(repos payment.RepoProvider, log *logger.ZapLogger) *PaymentUC {
	return &PaymentUC{repos: repos, log: log}
}

// AddCreditCard validates the form input, reduces the PAN to brand+last4 and
// stores the card. The first card in an empty collection becomes the default
// automatically.
func (uc *PaymentUC) AddCreditCard(ctx context.Context, userID string, req *payment.AddCreditCardRequest) (*models.CreditCard, error) {
	brand, last4, err := utils.ValidateCardNumber(req.CardNumber)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateExpiry(req.ExpiryMonth, req.ExpiryYear); err != nil {
		return nil, err
	}
	if req.CardholderName == "" {
		return nil, fmt.Errorf("cardholder name is required")
	}

	repo := uc.repos.PaymentRepository(userID)

	existing, err := repo.GetCreditCards(ctx)
	if err != nil {
		return nil, err
	}

	card := &models.CreditCard{
		CardholderName: req.CardholderName,
		Last4:          last4,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		Brand:          brand,
		IsDefault:      len(existing) == 0,
	}

	if err := repo.SaveCreditCard(ctx, card); err != nil {
		return nil, err
	}

	// An explicit default request on a non-empty collection flips the flags
	// after the save so the single-default invariant holds.
	if req.IsDefault && !card.IsDefault {
		if err := repo.SetDefaultPaymentMethod(ctx, card.ID, models.PaymentMethodCard); err != nil {
			return nil, err
		}
		card.IsDefault = true
	}

	return card, nil
}

func (uc *PaymentUC) GetCreditCards(ctx context.Context, userID string) ([]models.CreditCard, error) {
	return uc.repos.PaymentRepository(userID).GetCreditCards(ctx)
}

// DeleteCreditCard removes the card and, when it was the default, promotes
// the oldest remaining card.
func (uc *PaymentUC) DeleteCreditCard(ctx context.Context, userID, cardID string) error {
	repo := uc.repos.PaymentRepository(userID)

	cards, err := repo.GetCreditCards(ctx)
	if err != nil {
		return err
	}
	wasDefault := false
	for _, c := range cards {
		if c.ID == cardID {
			wasDefault = c.IsDefault
			break
		}
	}

	if err := repo.DeleteCreditCard(ctx, cardID); err != nil {
		return err
	}

	if wasDefault {
		remaining, err := repo.GetCreditCards(ctx)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			return repo.SetDefaultPaymentMethod(ctx, remaining[0].ID, models.PaymentMethodCard)
		}
	}
	return nil
}

// AddBankAccount validates the form input and stores the account with only
// the last four digits of the account number.
func (uc *PaymentUC) AddBankAccount(ctx context.Context, userID string, req *payment.AddBankAccountRequest) (*models.BankAccount, error) {
	last4, err := utils.ValidateAccountNumber(req.AccountNumber)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRoutingNumber(req.RoutingNumber); err != nil {
		return nil, err
	}
	if req.AccountName == "" {
		return nil, fmt.Errorf("account name is required")
	}

	repo := uc.repos.PaymentRepository(userID)

	existing, err := repo.GetBankAccounts(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.BankAccount{
		AccountName:        req.AccountName,
		AccountType:        req.AccountType,
		Last4:              last4,
		RoutingNumber:      req.RoutingNumber,
		VerificationStatus: models.VerificationPending,
		IsDefault:          len(existing) == 0,
	}

	if err := repo.SaveBankAccount(ctx, account); err != nil {
		return nil, err
	}

	if req.IsDefault && !account.IsDefault {
		if err := repo.SetDefaultPaymentMethod(ctx, account.ID, models.PaymentMethodBank); err != nil {
			return nil, err
		}
		account.IsDefault = true
	}

	return account, nil
}

func (uc *PaymentUC) GetBankAccounts(ctx context.Context, userID string) ([]models.BankAccount, error) {
	return uc.repos.PaymentRepository(userID).GetBankAccounts(ctx)
}

// DeleteBankAccount removes the account and promotes the oldest remaining
// account when the default was deleted.
func (uc *PaymentUC) DeleteBankAccount(ctx context.Context, userID, accountID string) error {
	repo := uc.repos.PaymentRepository(userID)

	accounts, err := repo.GetBankAccounts(ctx)
	if err != nil {
		return err
	}
	wasDefault := false
	for _, a := range accounts {
		if a.ID == accountID {
			wasDefault = a.IsDefault
			break
		}
	}

	if err := repo.DeleteBankAccount(ctx, accountID); err != nil {
		return err
	}

	if wasDefault {
		remaining, err := repo.GetBankAccounts(ctx)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			return repo.SetDefaultPaymentMethod(ctx, remaining[0].ID, models.PaymentMethodBank)
		}
	}
	return nil
}

func (uc *PaymentUC) SetDefaultPaymentMethod(ctx context.Context, userID, id string, typ models.PaymentMethodType) error {
	return uc.repos.PaymentRepository(userID).SetDefaultPaymentMethod(ctx, id, typ)
}

// GetPaymentMethods returns cards and bank accounts as one tagged-union list.
func (uc *PaymentUC) GetPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	repo := uc.repos.PaymentRepository(userID)

	cards, err := repo.GetCreditCards(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := repo.GetBankAccounts(ctx)
	if err != nil {
		return nil, err
	}

	methods := make([]models.PaymentMethod, 0, len(cards)+len(accounts))
	for i := range cards {
		methods = append(methods, models.PaymentMethod{Type: models.PaymentMethodCard, Card: &cards[i]})
	}
	for i := range accounts {
		methods = append(methods, models.PaymentMethod{Type: models.PaymentMethodBank, Bank: &accounts[i]})
	}
	return methods, nil
}

func (uc *PaymentUC) GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return uc.repos.PaymentRepository(userID).GetTransactions(ctx)
}

// UpdateTransactionStatus advances a transaction's status. Regressions are
// rejected; completed and failed are terminal.
func (uc *PaymentUC) UpdateTransactionStatus(ctx context.Context, userID, txnID string, status models.TransactionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown transaction status %q", status)
	}

	repo := uc.repos.PaymentRepository(userID)

	txns, err := repo.GetTransactions(ctx)
	if err != nil {
		return err
	}
	for _, txn := range txns {
		if txn.ID != txnID {
			continue
		}
		if status.Rank() < txn.Status.Rank() {
			return ErrStatusRegression
		}
		return repo.UpdateTransactionStatus(ctx, txnID, status)
	}
	return payment.ErrNotFound
}

// AcceptInvestorAgreement records the acceptance once; repeated accepts
// return the original record unchanged.
func (uc *PaymentUC) AcceptInvestorAgreement(ctx context.Context, userID, version, content string) (*models.InvestorAgreement, error) {
	repo := uc.repos.PaymentRepository(userID)

	if existing, err := repo.GetInvestorAgreement(ctx); err == nil && existing != nil {
		return existing, nil
	}

	agreement := &models.InvestorAgreement{
		Version:  version,
		Content:  content,
		Accepted: true,
	}
	if err := repo.SaveInvestorAgreement(ctx, agreement); err != nil {
		if errors.Is(err, payment.ErrAgreementExists) {
			return repo.GetInvestorAgreement(ctx)
		}
		return nil, err
	}
	return agreement, nil
}

func (uc *PaymentUC) GetInvestorAgreement(ctx context.Context, userID string) (*models.InvestorAgreement, error) {
	return uc.repos.PaymentRepository(userID).GetInvestorAgreement(ctx)
}
