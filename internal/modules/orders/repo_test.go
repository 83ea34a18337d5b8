package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/items"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/modules/stores"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/testutil"
)

func seedSellerWithOrder(t *testing.T, db *gorm.DB, externalID, sessionID string) orders.Order {
	t.Helper()
	now := time.Now()

	u := users.User{
		ID:         uuid.NewString(),
		ExternalID: externalID,
		Email:      externalID + "@example.com",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&u).Error)

	st := stores.Store{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Name:      "Store " + externalID,
		Slug:      "store-" + externalID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&st).Error)

	it := items.Item{
		ID:        uuid.NewString(),
		StoreID:   st.ID,
		Name:      "Item",
		Price:     decimal.NewFromInt(50),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&it).Error)

	sid := sessionID
	o := orders.Order{
		ID:          uuid.NewString(),
		ItemID:      it.ID,
		BuyerEmail:  "buyer@example.com",
		Amount:      it.Price,
		PlatformFee: decimal.NewFromInt(5),
		SessionID:   &sid,
		Status:      orders.StatusPaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(&o).Error)
	return o
}

func TestListBySellerScopesToOwnStores(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := orders.NewRepo(db)

	mine := seedSellerWithOrder(t, db, "ext_me", "cs_mine")
	seedSellerWithOrder(t, db, "ext_them", "cs_theirs")

	list, err := repo.ListBySeller(context.Background(), "ext_me")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
	assert.Equal(t, "Item", list[0].Item.Name)

	// Unknown subject sees an empty list, not an error.
	list, err = repo.ListBySeller(context.Background(), "ext_ghost")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetPreloadsOwnershipChain(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := orders.NewRepo(db)

	o := seedSellerWithOrder(t, db, "ext_me", "cs_chain")

	got, err := repo.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ext_me", got.Item.Store.User.ExternalID)

	_, err = repo.Get(context.Background(), uuid.NewString())
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}
