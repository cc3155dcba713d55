package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/property"
)

func newLocalPropertyRepo(t *testing.T) property.PropertyRepo {
	t.Helper()
	store := localstore.New(t.TempDir())
	return NewLocalPropertyRepo(store, logger.NewNop(), "user-1")
}

func TestLocalPropertyRepo_AutoSeedsCatalogue(t *testing.T) {
	repo := newLocalPropertyRepo(t)

	properties, err := repo.GetProperties(context.Background())
	require.NoError(t, err)
	assert.Len(t, properties, len(DefaultSeedProperties()))
}

func TestLocalPropertyRepo_GetPropertyByID(t *testing.T) {
	repo := newLocalPropertyRepo(t)
	ctx := context.Background()

	p, err := repo.GetPropertyByID(ctx, "prop-riverside-lofts")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "prop-riverside-lofts", p.ID)

	missing, err := repo.GetPropertyByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLocalPropertyRepo_UpdatePropertyFunding(t *testing.T) {
	repo := newLocalPropertyRepo(t)
	ctx := context.Background()

	before, err := repo.GetPropertyByID(ctx, "prop-riverside-lofts")
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePropertyFunding(ctx, "prop-riverside-lofts", 1500))

	after, err := repo.GetPropertyByID(ctx, "prop-riverside-lofts")
	require.NoError(t, err)
	assert.InDelta(t, before.RaisedAmount+1500, after.RaisedAmount, 0.001)

	assert.ErrorIs(t, repo.UpdatePropertyFunding(ctx, "nope", 100), property.ErrNotFound)
}

func TestLocalPropertyRepo_SubscribeFiresImmediateSnapshot(t *testing.T) {
	repo := newLocalPropertyRepo(t)

	snapshots := make(chan []models.Property, 4)
	unsubscribe, err := repo.SubscribeToProperties(context.Background(), func(properties []models.Property) {
		snapshots <- properties
	})
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case first := <-snapshots:
		assert.Len(t, first, len(DefaultSeedProperties()))
	case <-time.After(time.Second):
		t.Fatal("no immediate snapshot")
	}
}

func TestLocalPropertyRepo_SubscriberSeesFundingChange(t *testing.T) {
	repo := newLocalPropertyRepo(t)
	ctx := context.Background()

	snapshots := make(chan *models.Property, 4)
	unsubscribe, err := repo.SubscribeToProperty(ctx, "prop-maple-court", func(p *models.Property) {
		snapshots <- p
	})
	require.NoError(t, err)
	defer unsubscribe()

	first := <-snapshots
	require.NotNil(t, first)

	require.NoError(t, repo.UpdatePropertyFunding(ctx, "prop-maple-court", 2000))

	select {
	case updated := <-snapshots:
		require.NotNil(t, updated)
		assert.InDelta(t, first.RaisedAmount+2000, updated.RaisedAmount, 0.001)
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
}

func TestLocalPropertyRepo_UnsubscribeStopsNotifications(t *testing.T) {
	repo := newLocalPropertyRepo(t)
	ctx := context.Background()

	count := make(chan struct{}, 16)
	unsubscribe, err := repo.SubscribeToProperties(ctx, func([]models.Property) {
		count <- struct{}{}
	})
	require.NoError(t, err)

	<-count // immediate snapshot
	unsubscribe()
	unsubscribe() // second call is a no-op

	require.NoError(t, repo.UpdatePropertyFunding(ctx, "prop-harbor-plaza", 100))

	select {
	case <-count:
		t.Fatal("received notification after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLocalPropertyRepo_GetUserInvestedProperties(t *testing.T) {
	store := localstore.New(t.TempDir())
	repo := NewLocalPropertyRepo(store, logger.NewNop(), "user-1")
	ctx := context.Background()

	// No transactions yet.
	invested, err := repo.GetUserInvestedProperties(ctx)
	require.NoError(t, err)
	assert.Empty(t, invested)

	// Two transactions against the same property collapse to one entry.
	txns := []models.Transaction{
		{ID: "t1", PropertyID: "prop-riverside-lofts", Amount: 500, Status: models.TransactionCompleted},
		{ID: "t2", PropertyID: "prop-riverside-lofts", Amount: 700, Status: models.TransactionCompleted},
		{ID: "t3", PropertyID: "prop-cedar-storage", Amount: 300, Status: models.TransactionCompleted},
	}
	for i := range txns {
		require.NoError(t, store.Write("users/user-1/transactions/"+txns[i].ID, &txns[i]))
	}

	invested, err = repo.GetUserInvestedProperties(ctx)
	require.NoError(t, err)
	assert.Len(t, invested, 2)
}
