package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/payment"
	"github.com/brickvest/brickvest/services/property"
)

// fakePropertyRepo serves a fixed catalogue from memory.
type fakePropertyRepo struct {
	properties map[string]*models.Property
}

func newFakePropertyRepo(properties ...models.Property) *fakePropertyRepo {
	repo := &fakePropertyRepo{properties: make(map[string]*models.Property)}
	for i := range properties {
		p := properties[i]
		repo.properties[p.ID] = &p
	}
	return repo
}

func (f *fakePropertyRepo) GetProperties(context.Context) ([]models.Property, error) {
	out := make([]models.Property, 0, len(f.properties))
	for _, p := range f.properties {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePropertyRepo) GetPropertyByID(_ context.Context, id string) (*models.Property, error) {
	p, ok := f.properties[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePropertyRepo) SubscribeToProperties(ctx context.Context, cb func([]models.Property)) (property.UnsubscribeFunc, error) {
	snapshot, _ := f.GetProperties(ctx)
	cb(snapshot)
	return func() {}, nil
}

func (f *fakePropertyRepo) SubscribeToProperty(ctx context.Context, id string, cb func(*models.Property)) (property.UnsubscribeFunc, error) {
	p, _ := f.GetPropertyByID(ctx, id)
	cb(p)
	return func() {}, nil
}

func (f *fakePropertyRepo) GetUserInvestedProperties(context.Context) ([]models.Property, error) {
	return []models.Property{}, nil
}

func (f *fakePropertyRepo) UpdatePropertyFunding(_ context.Context, id string, amount float64) error {
	p, ok := f.properties[id]
	if !ok {
		return property.ErrNotFound
	}
	p.RaisedAmount += amount
	return nil
}

func (f *fakePropertyRepo) SeedProperties(_ context.Context, properties []models.Property) error {
	for i := range properties {
		p := properties[i]
		f.properties[p.ID] = &p
	}
	return nil
}

func (f *fakePropertyRepo) Destroy() {}

type fakePropertyProvider struct{ repo *fakePropertyRepo }

func (p fakePropertyProvider) PropertyRepository(string) property.PropertyRepo { return p.repo }

// fakePaymentRepo records transactions and serves one known card.
type fakePaymentRepo struct {
	cards []models.CreditCard
	txns  map[string]*models.Transaction
}

func newFakePaymentRepo(cards ...models.CreditCard) *fakePaymentRepo {
	return &fakePaymentRepo{cards: cards, txns: make(map[string]*models.Transaction)}
}

func (f *fakePaymentRepo) SaveCreditCard(_ context.Context, card *models.CreditCard) error {
	f.cards = append(f.cards, *card)
	return nil
}

func (f *fakePaymentRepo) GetCreditCards(context.Context) ([]models.CreditCard, error) {
	return append([]models.CreditCard{}, f.cards...), nil
}

func (f *fakePaymentRepo) DeleteCreditCard(context.Context, string) error { return nil }

func (f *fakePaymentRepo) SaveBankAccount(context.Context, *models.BankAccount) error { return nil }

func (f *fakePaymentRepo) GetBankAccounts(context.Context) ([]models.BankAccount, error) {
	return []models.BankAccount{}, nil
}

func (f *fakePaymentRepo) DeleteBankAccount(context.Context, string) error { return nil }

func (f *fakePaymentRepo) SetDefaultPaymentMethod(context.Context, string, models.PaymentMethodType) error {
	return nil
}

func (f *fakePaymentRepo) SaveTransaction(_ context.Context, txn *models.Transaction) error {
	copied := *txn
	f.txns[txn.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) GetTransactions(context.Context) ([]models.Transaction, error) {
	out := make([]models.Transaction, 0, len(f.txns))
	for _, t := range f.txns {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakePaymentRepo) UpdateTransactionStatus(_ context.Context, txnID string, status models.TransactionStatus) error {
	txn, ok := f.txns[txnID]
	if !ok {
		return payment.ErrNotFound
	}
	txn.Status = status
	return nil
}

func (f *fakePaymentRepo) SaveInvestorAgreement(context.Context, *models.InvestorAgreement) error {
	return nil
}

func (f *fakePaymentRepo) GetInvestorAgreement(context.Context) (*models.InvestorAgreement, error) {
	return nil, nil
}

func (f *fakePaymentRepo) Destroy() {}

type fakePaymentProvider struct{ repo *fakePaymentRepo }

func (p fakePaymentProvider) PaymentRepository(string) payment.PaymentRepo { return p.repo }

func testProperty() models.Property {
	return models.Property{
		ID:                "p1",
		Name:              "Riverside Lofts",
		GoalAmount:        100000,
		RaisedAmount:      40000,
		ExpectedROI:       8.5,
		MinimumInvestment: 500,
		Location:          models.Location{Latitude: 40.7128, Longitude: -74.0060},
	}
}

func newTestUC(propRepo *fakePropertyRepo, payRepo *fakePaymentRepo) property.PropertyUC {
	return NewPropertyUC(fakePropertyProvider{repo: propRepo},
		fakePaymentProvider{repo: payRepo}, logger.NewNop())
}

func TestInvest_CompletesTransactionAndFunding(t *testing.T) {
	propRepo := newFakePropertyRepo(testProperty())
	payRepo := newFakePaymentRepo(models.CreditCard{ID: "card-1", Last4: "4242"})
	uc := newTestUC(propRepo, payRepo)

	txn, err := uc.Invest(context.Background(), "u1", property.InvestRequest{
		PropertyID:        "p1",
		Amount:            1000,
		PaymentMethodID:   "card-1",
		PaymentMethodType: models.PaymentMethodCard,
	})
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.Equal(t, models.TransactionCompleted, txn.Status)
	assert.Equal(t, "Riverside Lofts", txn.PropertyName)
	assert.InDelta(t, 8.5, txn.ExpectedROI, 0.001)
	assert.InDelta(t, 41000, propRepo.properties["p1"].RaisedAmount, 0.001)
	assert.Equal(t, models.TransactionCompleted, payRepo.txns[txn.ID].Status)
}

func TestInvest_BelowMinimum(t *testing.T) {
	uc := newTestUC(newFakePropertyRepo(testProperty()), newFakePaymentRepo(models.CreditCard{ID: "card-1"}))

	_, err := uc.Invest(context.Background(), "u1", property.InvestRequest{
		PropertyID:        "p1",
		Amount:            100,
		PaymentMethodID:   "card-1",
		PaymentMethodType: models.PaymentMethodCard,
	})
	assert.ErrorIs(t, err, ErrBelowMinimum)
}

func TestInvest_UnknownProperty(t *testing.T) {
	uc := newTestUC(newFakePropertyRepo(), newFakePaymentRepo(models.CreditCard{ID: "card-1"}))

	_, err := uc.Invest(context.Background(), "u1", property.InvestRequest{
		PropertyID:        "missing",
		Amount:            1000,
		PaymentMethodID:   "card-1",
		PaymentMethodType: models.PaymentMethodCard,
	})
	assert.ErrorIs(t, err, property.ErrNotFound)
}

func TestInvest_UnknownPaymentMethod(t *testing.T) {
	uc := newTestUC(newFakePropertyRepo(testProperty()), newFakePaymentRepo())

	_, err := uc.Invest(context.Background(), "u1", property.InvestRequest{
		PropertyID:        "p1",
		Amount:            1000,
		PaymentMethodID:   "missing",
		PaymentMethodType: models.PaymentMethodCard,
	})
	assert.ErrorIs(t, err, payment.ErrNotFound)
}

func TestInvest_MissingPaymentMethodID(t *testing.T) {
	uc := newTestUC(newFakePropertyRepo(testProperty()), newFakePaymentRepo())

	_, err := uc.Invest(context.Background(), "u1", property.InvestRequest{
		PropertyID: "p1",
		Amount:     1000,
	})
	assert.ErrorIs(t, err, ErrPaymentMethodRequired)
}

func TestInvest_FundingPastGoalIsAllowed(t *testing.T) {
	p := testProperty()
	p.RaisedAmount = 99900
	propRepo := newFakePropertyRepo(p)
	uc := newTestUC(propRepo, newFakePaymentRepo(models.CreditCard{ID: "card-1"}))

	txn, err := uc.Invest(context.Background(), "u1", property.InvestRequest{
		PropertyID:        "p1",
		Amount:            5000,
		PaymentMethodID:   "card-1",
		PaymentMethodType: models.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCompleted, txn.Status)
	assert.InDelta(t, 104900, propRepo.properties["p1"].RaisedAmount, 0.001)
}

func TestGetNearbyProperties_FiltersByGeohashCell(t *testing.T) {
	near := testProperty() // NYC
	far := testProperty()
	far.ID = "p2"
	far.Name = "Harbor Plaza"
	far.Location = models.Location{Latitude: 34.0522, Longitude: -118.2437} // LA

	uc := newTestUC(newFakePropertyRepo(near, far), newFakePaymentRepo())

	properties, err := uc.GetNearbyProperties(context.Background(), 40.7130, -74.0055)
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, "p1", properties[0].ID)
}

func TestGetPropertyByID_NotFound(t *testing.T) {
	uc := newTestUC(newFakePropertyRepo(), newFakePaymentRepo())

	_, err := uc.GetPropertyByID(context.Background(), "missing")
	assert.ErrorIs(t, err, property.ErrNotFound)
}
