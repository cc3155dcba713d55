package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	paymentrepo "github.com/brickvest/brickvest/services/payment/repository"
)

func newTestFactory(t *testing.T) (*Factory, *localstore.Store) {
	t.Helper()
	cfg := &models.Config{}
	cfg.Storage.Backend = models.BackendLocal
	store := localstore.New(t.TempDir())
	return New(cfg, store, logger.NewNop()), store
}

func TestFactory_SameUserGetsSameInstance(t *testing.T) {
	f, _ := newTestFactory(t)

	first := f.PaymentRepository("u1")
	second := f.PaymentRepository("u1")
	assert.Same(t, first, second)

	other := f.PaymentRepository("u2")
	assert.NotSame(t, first, other)

	assert.Same(t, f.PropertyRepository("u1"), f.PropertyRepository("u1"))
	assert.Same(t, f.UserRepository(), f.UserRepository())
}

func TestFactory_ResetConstructsFreshInstances(t *testing.T) {
	f, _ := newTestFactory(t)

	before := f.PaymentRepository("u1")
	f.Reset()
	after := f.PaymentRepository("u1")

	assert.NotSame(t, before, after)
}

func TestFactory_FundingChangeReachesCatalogueSubscribers(t *testing.T) {
	f, _ := newTestFactory(t)
	ctx := context.Background()

	catalogue := f.PropertyRepository("")
	seeded, err := catalogue.GetProperties(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, seeded)

	calls := 0
	unsubscribe, err := catalogue.SubscribeToProperties(ctx, func([]models.Property) {
		calls++
	})
	require.NoError(t, err)
	defer unsubscribe()
	require.Equal(t, 1, calls) // immediate snapshot

	// The investing user funds through their own repository instance; the
	// catalogue subscriber still has to hear about it.
	investor := f.PropertyRepository("user-1")
	require.NoError(t, investor.UpdatePropertyFunding(ctx, seeded[0].ID, 2500))

	assert.Equal(t, 2, calls, "subscriber should see the funding change")
}

func TestFactory_SwitchChangesBackendAndResets(t *testing.T) {
	f, _ := newTestFactory(t)

	before := f.PaymentRepository("u1")

	f.SwitchToLocal() // same backend, caches survive
	assert.Same(t, before, f.PaymentRepository("u1"))

	f.SwitchToDocument("u1")
	assert.Equal(t, models.BackendDocument, f.Backend())

	f.SwitchToLocal()
	assert.Equal(t, models.BackendLocal, f.Backend())

	after := f.PaymentRepository("u1")
	assert.NotSame(t, before, after)
}

func TestFactory_SwitchToSameBackendKeepsInstances(t *testing.T) {
	f, _ := newTestFactory(t)

	before := f.PaymentRepository("u1")
	f.SwitchToLocal()
	assert.Same(t, before, f.PaymentRepository("u1"))
}

func TestFactory_EmptyUserIDUsesLocalPartition(t *testing.T) {
	f, store := newTestFactory(t)
	ctx := context.Background()

	repo := f.PaymentRepository("")
	require.NoError(t, repo.SaveCreditCard(ctx, &models.CreditCard{CardholderName: "Guest", Last4: "1111"}))

	direct := paymentrepo.NewLocalPaymentRepo(store, logger.NewNop(), paymentrepo.LocalUserID)
	cards, err := direct.GetCreditCards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}
