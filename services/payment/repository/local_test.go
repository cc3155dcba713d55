package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/payment"
)

func newLocalPaymentRepo(t *testing.T) (payment.PaymentRepo, *localstore.Store) {
	t.Helper()
	store := localstore.New(t.TempDir())
	return NewLocalPaymentRepo(store, logger.NewNop(), "user-1"), store
}

func TestLocalPaymentRepo_CardRoundTrip(t *testing.T) {
	repo, _ := newLocalPaymentRepo(t)
	ctx := context.Background()

	card := &models.CreditCard{
		CardholderName: "Ada Lovelace",
		Last4:          "4242",
		ExpiryMonth:    12,
		ExpiryYear:     2030,
		Brand:          "visa",
		IsDefault:      true,
	}
	require.NoError(t, repo.SaveCreditCard(ctx, card))
	require.NotEmpty(t, card.ID)
	require.False(t, card.CreatedAt.IsZero())

	cards, err := repo.GetCreditCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, *card, cards[0])
}

func TestLocalPaymentRepo_SetDefaultKeepsSingleDefault(t *testing.T) {
	repo, _ := newLocalPaymentRepo(t)
	ctx := context.Background()

	first := &models.CreditCard{CardholderName: "A", Last4: "1111", IsDefault: true, CreatedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Second)}
	second := &models.CreditCard{CardholderName: "B", Last4: "2222", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, repo.SaveCreditCard(ctx, first))
	require.NoError(t, repo.SaveCreditCard(ctx, second))

	require.NoError(t, repo.SetDefaultPaymentMethod(ctx, second.ID, models.PaymentMethodCard))

	cards, err := repo.GetCreditCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	defaults := 0
	for _, c := range cards {
		if c.IsDefault {
			defaults++
			assert.Equal(t, second.ID, c.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestLocalPaymentRepo_SetDefaultUnknownID(t *testing.T) {
	repo, _ := newLocalPaymentRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveCreditCard(ctx, &models.CreditCard{CardholderName: "A", Last4: "1111"}))

	err := repo.SetDefaultPaymentMethod(ctx, "missing", models.PaymentMethodCard)
	assert.ErrorIs(t, err, payment.ErrNotFound)
}

func TestLocalPaymentRepo_ReadErrorsReturnEmptyCollection(t *testing.T) {
	repo, _ := newLocalPaymentRepo(t)

	cards, err := repo.GetCreditCards(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.NotNil(t, cards)
}

func TestLocalPaymentRepo_WriteFailureLeavesCollectionUnchanged(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits do not bind as root")
	}

	dir := t.TempDir()
	store := localstore.New(dir)
	repo := NewLocalPaymentRepo(store, logger.NewNop(), "user-1")
	ctx := context.Background()

	require.NoError(t, repo.SaveCreditCard(ctx, &models.CreditCard{CardholderName: "A", Last4: "1111"}))

	cardsDir := filepath.Join(dir, "users", "user-1", "cards")
	require.NoError(t, os.Chmod(cardsDir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(cardsDir, 0o755) })

	err := repo.SaveCreditCard(ctx, &models.CreditCard{CardholderName: "B", Last4: "2222"})
	require.Error(t, err)

	cards, err := repo.GetCreditCards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestLocalPaymentRepo_BankAccountDefaultsToPendingVerification(t *testing.T) {
	repo, _ := newLocalPaymentRepo(t)
	ctx := context.Background()

	account := &models.BankAccount{AccountName: "Checking", AccountType: "checking", Last4: "6789", RoutingNumber: "021000021"}
	require.NoError(t, repo.SaveBankAccount(ctx, account))

	accounts, err := repo.GetBankAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, models.VerificationPending, accounts[0].VerificationStatus)
}

func TestLocalPaymentRepo_UpdateTransactionStatus(t *testing.T) {
	repo, _ := newLocalPaymentRepo(t)
	ctx := context.Background()

	txn := &models.Transaction{PropertyID: "p1", PropertyName: "Lofts", Amount: 500, Status: models.TransactionPending}
	require.NoError(t, repo.SaveTransaction(ctx, txn))

	require.NoError(t, repo.UpdateTransactionStatus(ctx, txn.ID, models.TransactionCompleted))

	txns, err := repo.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TransactionCompleted, txns[0].Status)

	assert.ErrorIs(t, repo.UpdateTransactionStatus(ctx, "missing", models.TransactionFailed), payment.ErrNotFound)
}

func TestLocalPaymentRepo_AgreementAcceptedOnce(t *testing.T) {
	repo, _ := newLocalPaymentRepo(t)
	ctx := context.Background()

	got, err := repo.GetInvestorAgreement(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	agreement := &models.InvestorAgreement{Version: "1.0", Content: "terms", Accepted: true}
	require.NoError(t, repo.SaveInvestorAgreement(ctx, agreement))

	err = repo.SaveInvestorAgreement(ctx, &models.InvestorAgreement{Version: "2.0", Content: "other", Accepted: true})
	assert.ErrorIs(t, err, payment.ErrAgreementExists)

	got, err = repo.GetInvestorAgreement(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1.0", got.Version)
}

func TestLocalPaymentRepo_UsersAreIsolated(t *testing.T) {
	store := localstore.New(t.TempDir())
	ctx := context.Background()

	alice := NewLocalPaymentRepo(store, logger.NewNop(), "alice")
	bob := NewLocalPaymentRepo(store, logger.NewNop(), "bob")

	require.NoError(t, alice.SaveCreditCard(ctx, &models.CreditCard{CardholderName: "Alice", Last4: "1111"}))

	cards, err := bob.GetCreditCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)
}
