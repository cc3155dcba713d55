package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/property"
)

func newPostgresPropertyRepo(t *testing.T) (property.PropertyRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewPostgresPropertyRepo(sqlxDB, nil, models.NSQConfig{}, logger.NewNop(), "user-1"), mock
}

func propertyRows(ids ...string) *sqlmock.Rows {
	now := time.Now().UTC().Truncate(time.Second)
	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "image_url", "goal_amount", "raised_amount",
		"address", "latitude", "longitude", "type", "expected_roi",
		"minimum_investment", "ai_insight", "created_at", "updated_at",
	})
	for _, id := range ids {
		rows.AddRow(id, "Listing "+id, "", "", 100000.0, 25000.0,
			"1 Main St", 40.71, -74.0, "residential", 8.5, 500.0, "", now, now)
	}
	return rows
}

func TestPostgresPropertyRepo_GetProperties(t *testing.T) {
	repo, mock := newPostgresPropertyRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM properties ORDER BY name`).
		WillReturnRows(propertyRows("p1", "p2"))

	properties, err := repo.GetProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, properties, 2)
	assert.Equal(t, "p1", properties[0].ID)
	assert.Equal(t, 40.71, properties[0].Location.Latitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPropertyRepo_GetPropertyByIDMissingReturnsNil(t *testing.T) {
	repo, mock := newPostgresPropertyRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM properties WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(propertyRows())

	p, err := repo.GetPropertyByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPropertyRepo_FindNearbyUsesBoundingBox(t *testing.T) {
	repo, mock := newPostgresPropertyRepo(t)

	finder, ok := repo.(property.NearbyFinder)
	require.True(t, ok)

	mock.ExpectQuery(`SELECT .+ FROM properties\s+WHERE latitude BETWEEN`).
		WithArgs(40.71-0.045, 40.71+0.045, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(propertyRows("p1"))

	properties, err := finder.FindNearby(context.Background(), 40.71, -74.0)
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, "p1", properties[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPropertyRepo_UpdatePropertyFundingMissing(t *testing.T) {
	repo, mock := newPostgresPropertyRepo(t)

	mock.ExpectExec(`UPDATE properties SET raised_amount`).
		WithArgs(2500.0, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePropertyFunding(context.Background(), "missing", 2500)
	assert.ErrorIs(t, err, property.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPropertyRepo_GetUserInvestedProperties(t *testing.T) {
	repo, mock := newPostgresPropertyRepo(t)

	mock.ExpectQuery(`SELECT DISTINCT .+ FROM properties p JOIN transactions t`).
		WithArgs("user-1").
		WillReturnRows(propertyRows("p2"))

	properties, err := repo.GetUserInvestedProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, "p2", properties[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
