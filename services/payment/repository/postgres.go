package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/payment"
)

// postgresPaymentRepo maps each entity to a table row keyed by a user-id
// foreign key.
type postgresPaymentRepo struct {
	db     *sqlx.DB
	log    *logger.ZapLogger
	userID string
}

// NewPostgresPaymentRepo creates the relational-backend payment repository
// for the given user.
func NewPostgresPaymentRepo(db *sqlx.DB, log *logger.ZapLogger, userID string) payment.PaymentRepo {
	return &postgresPaymentRepo{db: db, log: log, userID: userID}
}

func (r *postgresPaymentRepo) SaveCreditCard(ctx context.Context, card *models.CreditCard) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	query := `
		INSERT INTO credit_cards (id, user_id, cardholder_name, last4, expiry_month, expiry_year, brand, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		card.ID, r.userID, card.CardholderName, card.Last4,
		card.ExpiryMonth, card.ExpiryYear, card.Brand, card.IsDefault, card.CreatedAt,
	)
	if err != nil {
		r.log.Error("failed to save credit card", logger.String("card_id", card.ID), logger.Err(err))
		return fmt.Errorf("failed to save credit card: %w", err)
	}
	return nil
}

func (r *postgresPaymentRepo) GetCreditCards(ctx context.Context) ([]models.CreditCard, error) {
	query := `
		SELECT id, cardholder_name, last4, expiry_month, expiry_year, brand, is_default, created_at
		FROM credit_cards
		WHERE user_id = $1
		ORDER BY created_at
	`
	cards := []models.CreditCard{}
	if err := r.db.SelectContext(ctx, &cards, query, r.userID); err != nil {
		r.log.Error("failed to list credit cards", logger.Err(err))
		return []models.CreditCard{}, nil
	}
	return cards, nil
}

func (r *postgresPaymentRepo) DeleteCreditCard(ctx context.Context, cardID string) error {
	query := `DELETE FROM credit_cards WHERE id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, cardID, r.userID); err != nil {
		r.log.Error("failed to delete credit card", logger.String("card_id", cardID), logger.Err(err))
		return fmt.Errorf("failed to delete credit card: %w", err)
	}
	return nil
}

func (r *postgresPaymentRepo) SaveBankAccount(ctx context.Context, account *models.BankAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if account.VerificationStatus == "" {
		account.VerificationStatus = models.VerificationPending
	}

	query := `
		INSERT INTO bank_accounts (id, user_id, account_name, account_type, last4, routing_number, verification_status, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, r.userID, account.AccountName, account.AccountType, account.Last4,
		account.RoutingNumber, account.VerificationStatus, account.IsDefault, account.CreatedAt,
	)
	if err != nil {
		r.log.Error("failed to save bank account", logger.String("account_id", account.ID), logger.Err(err))
		return fmt.Errorf("failed to save bank account: %w", err)
	}
	return nil
}

func (r *postgresPaymentRepo) GetBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	query := `
		SELECT id, account_name, account_type, last4, routing_number, verification_status, is_default, created_at
		FROM bank_accounts
		WHERE user_id = $1
		ORDER BY created_at
	`
	accounts := []models.BankAccount{}
	if err := r.db.SelectContext(ctx, &accounts, query, r.userID); err != nil {
		r.log.Error("failed to list bank accounts", logger.Err(err))
		return []models.BankAccount{}, nil
	}
	return accounts, nil
}

func (r *postgresPaymentRepo) DeleteBankAccount(ctx context.Context, accountID string) error {
	query := `DELETE FROM bank_accounts WHERE id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, accountID, r.userID); err != nil {
		r.log.Error("failed to delete bank account", logger.String("account_id", accountID), logger.Err(err))
		return fmt.Errorf("failed to delete bank account: %w", err)
	}
	return nil
}

func (r *postgresPaymentRepo) SetDefaultPaymentMethod(ctx context.Context, id string, typ models.PaymentMethodType) error {
	var table string
	switch typ {
	case models.PaymentMethodCard:
		table = "credit_cards"
	case models.PaymentMethodBank:
		table = "bank_accounts"
	default:
		return fmt.Errorf("unknown payment method type %q", typ)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	clearQuery := fmt.Sprintf(`UPDATE %s SET is_default = false WHERE user_id = $1`, table)
	if _, err := tx.ExecContext(ctx, clearQuery, r.userID); err != nil {
		r.log.Error("failed to clear default flags", logger.String("id", id), logger.Err(err))
		return fmt.Errorf("failed to clear default flags: %w", err)
	}

	setQuery := fmt.Sprintf(`UPDATE %s SET is_default = true WHERE id = $1 AND user_id = $2`, table)
	res, err := tx.ExecContext(ctx, setQuery, id, r.userID)
	if err != nil {
		r.log.Error("failed to set default flag", logger.String("id", id), logger.Err(err))
		return fmt.Errorf("failed to set default flag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return payment.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postgresPaymentRepo) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Second)
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now

	query := `
		INSERT INTO transactions (id, user_id, property_id, property_name, amount, status, payment_method_id, payment_method_type, expected_roi, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		txn.ID, r.userID, txn.PropertyID, txn.PropertyName, txn.Amount, txn.Status,
		txn.PaymentMethodID, txn.PaymentMethodType, txn.ExpectedROI, txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		r.log.Error("failed to save transaction", logger.String("txn_id", txn.ID), logger.Err(err))
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (r *postgresPaymentRepo) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	query := `
		SELECT id, property_id, property_name, amount, status, payment_method_id, payment_method_type, expected_roi, created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at
	`
	txns := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &txns, query, r.userID); err != nil {
		r.log.Error("failed to list transactions", logger.Err(err))
		return []models.Transaction{}, nil
	}
	return txns, nil
}

func (r *postgresPaymentRepo) UpdateTransactionStatus(ctx context.Context, txnID string, status models.TransactionStatus) error {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC().Truncate(time.Second), txnID, r.userID)
	if err != nil {
		r.log.Error("failed to update transaction status", logger.String("txn_id", txnID), logger.Err(err))
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return payment.ErrNotFound
	}
	return nil
}

func (r *postgresPaymentRepo) SaveInvestorAgreement(ctx context.Context, agreement *models.InvestorAgreement) error {
	if agreement.ID == "" {
		agreement.ID = uuid.New().String()
	}
	if agreement.AcceptedAt.IsZero() {
		agreement.AcceptedAt = time.Now().UTC().Truncate(time.Second)
	}

	query := `
		INSERT INTO investor_agreements (id, user_id, version, content, accepted, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		agreement.ID, r.userID, agreement.Version, agreement.Content, agreement.Accepted, agreement.AcceptedAt,
	)
	if err != nil {
		r.log.Error("failed to save investor agreement", logger.Err(err))
		return fmt.Errorf("failed to save investor agreement: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return payment.ErrAgreementExists
	}
	return nil
}

func (r *postgresPaymentRepo) GetInvestorAgreement(ctx context.Context) (*models.InvestorAgreement, error) {
	query := `
		SELECT id, version, content, accepted, accepted_at
		FROM investor_agreements
		WHERE user_id = $1
	`
	var agreement models.InvestorAgreement
	if err := r.db.GetContext(ctx, &agreement, query, r.userID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.log.Error("failed to read investor agreement", logger.Err(err))
		}
		return nil, nil
	}
	return &agreement, nil
}

func (r *postgresPaymentRepo) Destroy() {}
