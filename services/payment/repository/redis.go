package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/brickvest/brickvest/internal/pkg/constants"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/payment"
)

// redisPaymentRepo stores one JSON document per entity under per-user keys.
// SetDefaultPaymentMethod flips the flags across all documents in a single
// pipeline, mirroring a batched multi-document update.
type redisPaymentRepo struct {
	client *redis.Client
	log    *logger.ZapLogger
	userID string
}

// NewRedisPaymentRepo creates the document-backend payment repository for
// the given user.
func NewRedisPaymentRepo(client *redis.Client, log *logger.ZapLogger, userID string) payment.PaymentRepo {
	return &redisPaymentRepo{client: client, log: log, userID: userID}
}

func (r *redisPaymentRepo) scanDocs(ctx context.Context, pattern string) ([][]byte, error) {
	var docs [][]byte
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		docs = append(docs, data)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *redisPaymentRepo) SaveCreditCard(ctx context.Context, card *models.CreditCard) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	data, err := json.Marshal(card)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(constants.KeyUserCard, r.userID, card.ID)
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.log.Error("failed to save credit card", logger.String("card_id", card.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *redisPaymentRepo) GetCreditCards(ctx context.Context) ([]models.CreditCard, error) {
	docs, err := r.scanDocs(ctx, fmt.Sprintf(constants.KeyUserCards, r.userID))
	if err != nil {
		r.log.Error("failed to list credit cards", logger.Err(err))
		return []models.CreditCard{}, nil
	}

	cards := make([]models.CreditCard, 0, len(docs))
	for _, doc := range docs {
		var card models.CreditCard
		if err := json.Unmarshal(doc, &card); err != nil {
			r.log.Error("failed to decode credit card document", logger.Err(err))
			continue
		}
		cards = append(cards, card)
	}
	sortCardsByCreatedAt(cards)
	return cards, nil
}

func (r *redisPaymentRepo) DeleteCreditCard(ctx context.Context, cardID string) error {
	key := fmt.Sprintf(constants.KeyUserCard, r.userID, cardID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Error("failed to delete credit card", logger.String("card_id", cardID), logger.Err(err))
		return err
	}
	return nil
}

func (r *redisPaymentRepo) SaveBankAccount(ctx context.Context, account *models.BankAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if account.VerificationStatus == "" {
		account.VerificationStatus = models.VerificationPending
	}

	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(constants.KeyUserBank, r.userID, account.ID)
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.log.Error("failed to save bank account", logger.String("account_id", account.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *redisPaymentRepo) GetBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	docs, err := r.scanDocs(ctx, fmt.Sprintf(constants.KeyUserBanks, r.userID))
	if err != nil {
		r.log.Error("failed to list bank accounts", logger.Err(err))
		return []models.BankAccount{}, nil
	}

	accounts := make([]models.BankAccount, 0, len(docs))
	for _, doc := range docs {
		var account models.BankAccount
		if err := json.Unmarshal(doc, &account); err != nil {
			r.log.Error("failed to decode bank account document", logger.Err(err))
			continue
		}
		accounts = append(accounts, account)
	}
	sortBanksByCreatedAt(accounts)
	return accounts, nil
}

func (r *redisPaymentRepo) DeleteBankAccount(ctx context.Context, accountID string) error {
	key := fmt.Sprintf(constants.KeyUserBank, r.userID, accountID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Error("failed to delete bank account", logger.String("account_id", accountID), logger.Err(err))
		return err
	}
	return nil
}

func (r *redisPaymentRepo) SetDefaultPaymentMethod(ctx context.Context, id string, typ models.PaymentMethodType) error {
	pipe := r.client.TxPipeline()

	switch typ {
	case models.PaymentMethodCard:
		cards, _ := r.GetCreditCards(ctx)
		if !cardExists(cards, id) {
			return payment.ErrNotFound
		}
		for i := range cards {
			cards[i].IsDefault = cards[i].ID == id
			data, err := json.Marshal(&cards[i])
			if err != nil {
				return err
			}
			pipe.Set(ctx, fmt.Sprintf(constants.KeyUserCard, r.userID, cards[i].ID), data, 0)
		}
	case models.PaymentMethodBank:
		accounts, _ := r.GetBankAccounts(ctx)
		if !bankExists(accounts, id) {
			return payment.ErrNotFound
		}
		for i := range accounts {
			accounts[i].IsDefault = accounts[i].ID == id
			data, err := json.Marshal(&accounts[i])
			if err != nil {
				return err
			}
			pipe.Set(ctx, fmt.Sprintf(constants.KeyUserBank, r.userID, accounts[i].ID), data, 0)
		}
	default:
		return fmt.Errorf("unknown payment method type %q", typ)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("failed to flip default payment method flags", logger.String("id", id), logger.Err(err))
		return err
	}
	return nil
}

func (r *redisPaymentRepo) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Second)
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now

	data, err := json.Marshal(txn)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(constants.KeyUserTxn, r.userID, txn.ID)
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.log.Error("failed to save transaction", logger.String("txn_id", txn.ID), logger.Err(err))
		return err
	}
	return nil
}

func (r *redisPaymentRepo) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	docs, err := r.scanDocs(ctx, fmt.Sprintf(constants.KeyUserTxns, r.userID))
	if err != nil {
		r.log.Error("failed to list transactions", logger.Err(err))
		return []models.Transaction{}, nil
	}

	txns := make([]models.Transaction, 0, len(docs))
	for _, doc := range docs {
		var txn models.Transaction
		if err := json.Unmarshal(doc, &txn); err != nil {
			r.log.Error("failed to decode transaction document", logger.Err(err))
			continue
		}
		txns = append(txns, txn)
	}
	sortTxnsByCreatedAt(txns)
	return txns, nil
}

func (r *redisPaymentRepo) UpdateTransactionStatus(ctx context.Context, txnID string, status models.TransactionStatus) error {
	key := fmt.Sprintf(constants.KeyUserTxn, r.userID, txnID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return payment.ErrNotFound
		}
		r.log.Error("failed to read transaction", logger.String("txn_id", txnID), logger.Err(err))
		return err
	}

	var txn models.Transaction
	if err := json.Unmarshal(data, &txn); err != nil {
		return err
	}
	txn.Status = status
	txn.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	updated, err := json.Marshal(&txn)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, updated, 0).Err(); err != nil {
		r.log.Error("failed to update transaction status", logger.String("txn_id", txnID), logger.Err(err))
		return err
	}
	return nil
}

func (r *redisPaymentRepo) SaveInvestorAgreement(ctx context.Context, agreement *models.InvestorAgreement) error {
	if agreement.ID == "" {
		agreement.ID = uuid.New().String()
	}
	if agreement.AcceptedAt.IsZero() {
		agreement.AcceptedAt = time.Now().UTC().Truncate(time.Second)
	}

	data, err := json.Marshal(agreement)
	if err != nil {
		return err
	}

	key := fmt.Sprintf(constants.KeyUserAgreement, r.userID)
	// SetNX keeps the first accepted agreement immutable.
	ok, err := r.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		r.log.Error("failed to save investor agreement", logger.Err(err))
		return err
	}
	if !ok {
		return payment.ErrAgreementExists
	}
	return nil
}

func (r *redisPaymentRepo) GetInvestorAgreement(ctx context.Context) (*models.InvestorAgreement, error) {
	key := fmt.Sprintf(constants.KeyUserAgreement, r.userID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Error("failed to read investor agreement", logger.Err(err))
		}
		return nil, nil
	}

	var agreement models.InvestorAgreement
	if err := json.Unmarshal(data, &agreement); err != nil {
		r.log.Error("failed to decode investor agreement", logger.Err(err))
		return nil, nil
	}
	return &agreement, nil
}

func (r *redisPaymentRepo) Destroy() {}
