package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/payment"
)

// LocalUserID partitions the on-device store when nobody is signed in.
const LocalUserID = "local"

// localPaymentRepo keeps every entity in its own JSON file under the user's
// directory, so concurrent writers on different entities cannot clobber each
// other.
type localPaymentRepo struct {
	store  *localstore.Store
	log    *logger.ZapLogger
	userID string
}

// NewLocalPaymentRepo creates the filesystem-backed payment repository for
// the given user.
func NewLocalPaymentRepo(store *localstore.Store, log *logger.ZapLogger, userID string) payment.PaymentRepo {
	if userID == "" {
		userID = LocalUserID
	}
	return &localPaymentRepo{store: store, log: log, userID: userID}
}

func (r *localPaymentRepo) cardKey(id string) string {
	return fmt.Sprintf("users/%s/cards/%s", r.userID, id)
}

func (r *localPaymentRepo) bankKey(id string) string {
	return fmt.Sprintf("users/%s/banks/%s", r.userID, id)
}

func (r *localPaymentRepo) txnKey(id string) string {
	return fmt.Sprintf("users/%s/transactions/%s", r.userID, id)
}

func (r *localPaymentRepo) agreementKey() string {
	return fmt.Sprintf("users/%s/agreement", r.userID)
}

func (r *localPaymentRepo) SaveCreditCard(ctx context.Context, card *models.CreditCard) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	if err := r.store.Write(r.cardKey(card.ID), card); err != nil {
		r.log.Error("failed to save credit card", logger.String("card_id", card.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *localPaymentRepo) GetCreditCards(ctx context.Context) ([]models.CreditCard, error) {
	keys, err := r.store.List(fmt.Sprintf("users/%s/cards", r.userID))
	if err != nil {
		r.log.Error("failed to list credit cards", logger.Err(err))
		return []models.CreditCard{}, nil
	}

	cards := make([]models.CreditCard, 0, len(keys))
	for _, key := range keys {
		var card models.CreditCard
		if err := r.store.Read(key, &card); err != nil {
			r.log.Error("failed to read credit card", logger.String("key", key), logger.Err(err))
			continue
		}
		cards = append(cards, card)
	}
	sortCardsByCreatedAt(cards)
	return cards, nil
}

func (r *localPaymentRepo) DeleteCreditCard(ctx context.Context, cardID string) error {
	if err := r.store.Delete(r.cardKey(cardID)); err != nil {
		r.log.Error("failed to delete credit card", logger.String("card_id", cardID), logger.Err(err))
		return err
	}
	return nil
}

func (r *localPaymentRepo) SaveBankAccount(ctx context.Context, account *models.BankAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if account.VerificationStatus == "" {
		account.VerificationStatus = models.VerificationPending
	}

	if err := r.store.Write(r.bankKey(account.ID), account); err != nil {
		r.log.Error("failed to save bank account", logger.String("account_id", account.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *localPaymentRepo) GetBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	keys, err := r.store.List(fmt.Sprintf("users/%s/banks", r.userID))
	if err != nil {
		r.log.Error("failed to list bank accounts", logger.Err(err))
		return []models.BankAccount{}, nil
	}

	accounts := make([]models.BankAccount, 0, len(keys))
	for _, key := range keys {
		var account models.BankAccount
		if err := r.store.Read(key, &account); err != nil {
			r.log.Error("failed to read bank account", logger.String("key", key), logger.Err(err))
			continue
		}
		accounts = append(accounts, account)
	}
	sortBanksByCreatedAt(accounts)
	return accounts, nil
}

func (r *localPaymentRepo) DeleteBankAccount(ctx context.Context, accountID string) error {
	if err := r.store.Delete(r.bankKey(accountID)); err != nil {
		r.log.Error("failed to delete bank account", logger.String("account_id", accountID), logger.Err(err))
		return err
	}
	return nil
}

func (r *localPaymentRepo) SetDefaultPaymentMethod(ctx context.Context, id string, typ models.PaymentMethodType) error {
	switch typ {
	case models.PaymentMethodCard:
		cards, _ := r.GetCreditCards(ctx)
		if !cardExists(cards, id) {
			return payment.ErrNotFound
		}
		for i := range cards {
			cards[i].IsDefault = cards[i].ID == id
			if err := r.store.Write(r.cardKey(cards[i].ID), &cards[i]); err != nil {
				r.log.Error("failed to update card default flag", logger.String("card_id", cards[i].ID), logger.Err(err))
				return err
			}
		}
	case models.PaymentMethodBank:
		accounts, _ := r.GetBankAccounts(ctx)
		if !bankExists(accounts, id) {
			return payment.ErrNotFound
		}
		for i := range accounts {
			accounts[i].IsDefault = accounts[i].ID == id
			if err := r.store.Write(r.bankKey(accounts[i].ID), &accounts[i]); err != nil {
				r.log.Error("failed to update bank default flag", logger.String("account_id", accounts[i].ID), logger.Err(err))
				return err
			}
		}
	default:
		return fmt.Errorf("unknown payment method type %q", typ)
	}
	return nil
}

func (r *localPaymentRepo) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Second)
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now

	if err := r.store.Write(r.txnKey(txn.ID), txn); err != nil {
		r.log.Error("failed to save transaction", logger.String("txn_id", txn.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *localPaymentRepo) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	keys, err := r.store.List(fmt.Sprintf("users/%s/transactions", r.userID))
	if err != nil {
		r.log.Error("failed to list transactions", logger.Err(err))
		return []models.Transaction{}, nil
	}

	txns := make([]models.Transaction, 0, len(keys))
	for _, key := range keys {
		var txn models.Transaction
		if err := r.store.Read(key, &txn); err != nil {
			r.log.Error("failed to read transaction", logger.String("key", key), logger.Err(err))
			continue
		}
		txns = append(txns, txn)
	}
	sortTxnsByCreatedAt(txns)
	return txns, nil
}

func (r *localPaymentRepo) UpdateTransactionStatus(ctx context.Context, txnID string, status models.TransactionStatus) error {
	var txn models.Transaction
	if err := r.store.Read(r.txnKey(txnID), &txn); err != nil {
		if err == localstore.ErrNotFound {
			return payment.ErrNotFound
		}
		r.log.Error("failed to read transaction", logger.String("txn_id", txnID), logger.Err(err))
		return err
	}

	txn.Status = status
	txn.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	if err := r.store.Write(r.txnKey(txnID), &txn); err != nil {
		r.log.Error("failed to update transaction status", logger.String("txn_id", txnID), logger.Err(err))
		return err
	}
	return nil
}

func (r *localPaymentRepo) SaveInvestorAgreement(ctx context.Context, agreement *models.InvestorAgreement) error {
	var existing models.InvestorAgreement
	if err := r.store.Read(r.agreementKey(), &existing); err == nil {
		return payment.ErrAgreementExists
	}

	if agreement.ID == "" {
		agreement.ID = uuid.New().String()
	}
	if agreement.AcceptedAt.IsZero() {
		agreement.AcceptedAt = time.Now().UTC().Truncate(time.Second)
	}

	if err := r.store.Write(r.agreementKey(), agreement); err != nil {
		r.log.Error("failed to save investor agreement", logger.Err(err))
		return err
	}
	return nil
}

func (r *localPaymentRepo) GetInvestorAgreement(ctx context.Context) (*models.InvestorAgreement, error) {
	var agreement models.InvestorAgreement
	if err := r.store.Read(r.agreementKey(), &agreement); err != nil {
		if err != localstore.ErrNotFound {
			r.log.Error("failed to read investor agreement", logger.Err(err))
		}
		return nil, nil
	}
	return &agreement, nil
}

func (r *localPaymentRepo) Destroy() {}

func cardExists(cards []models.CreditCard, id string) bool {
	for _, c := range cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

func bankExists(accounts []models.BankAccount, id string) bool {
	for _, a := range accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}
