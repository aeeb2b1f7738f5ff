package models

import (
	"context"
	"testing"
	"time"

	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePurchaseDebitsAndSnapshotsPrice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artist := createUser(t, db, "seller1", true, 0)
	buyer := createUser(t, db, "shopper1", false, 100)
	col := createCollection(t, db, artist, "Harbour Tour", 30, true)

	p, err := CreatePurchase(ctx, db, buyer.ID, col.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 30, p.Price)
	assert.Equal(t, PaymentCompleted, p.PaymentStatus)
	assert.True(t, p.IsActive)
	assert.WithinDuration(t, p.PurchasedAt.Add(PurchaseTTL), p.ExpiresAt, time.Second)

	var fresh user.User
	require.NoError(t, db.First(&fresh, "id = ?", buyer.ID).Error)
	assert.EqualValues(t, 70, fresh.Tokens)

	// Raising the price later must not touch the snapshot.
	col.Price = 99
	require.NoError(t, UpdateCollection(ctx, db, col))
	var stored Purchase
	require.NoError(t, db.First(&stored, "id = ?", p.ID).Error)
	assert.EqualValues(t, 30, stored.Price)
}

func TestCreatePurchaseInsufficientTokens(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artist := createUser(t, db, "seller2", true, 0)
	buyer := createUser(t, db, "shopper2", false, 10)
	col := createCollection(t, db, artist, "Pricey", 50, true)

	_, err := CreatePurchase(ctx, db, buyer.ID, col.ID)
	require.Error(t, err)
	var ce *utils.CustomError
	require.True(t, utils.As(err, &ce))
	assert.Equal(t, utils.ErrBadRequest.Code, ce.Code)
	assert.Equal(t, "Insufficient tokens", ce.Message)

	// Nothing moved: no purchase row, balance untouched.
	var n int64
	require.NoError(t, db.Model(&Purchase{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
	var fresh user.User
	require.NoError(t, db.First(&fresh, "id = ?", buyer.ID).Error)
	assert.EqualValues(t, 10, fresh.Tokens)
}

func TestCreatePurchaseRejectsDoubleBuy(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artist := createUser(t, db, "seller3", true, 0)
	buyer := createUser(t, db, "shopper3", false, 100)
	col := createCollection(t, db, artist, "Once Only", 30, true)

	_, err := CreatePurchase(ctx, db, buyer.ID, col.ID)
	require.NoError(t, err)

	_, err = CreatePurchase(ctx, db, buyer.ID, col.ID)
	require.Error(t, err)
	var ce *utils.CustomError
	require.True(t, utils.As(err, &ce))
	assert.Equal(t, utils.ErrConflict.Code, ce.Code)
	assert.Equal(t, "You already own this collection", ce.Message)

	// Debited exactly once.
	var fresh user.User
	require.NoError(t, db.First(&fresh, "id = ?", buyer.ID).Error)
	assert.EqualValues(t, 70, fresh.Tokens)
}

func TestCreatePurchaseHidesDrafts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artist := createUser(t, db, "seller4", true, 0)
	buyer := createUser(t, db, "shopper4", false, 100)
	draft := createCollection(t, db, artist, "Unreleased", 30, false)

	_, err := CreatePurchase(ctx, db, buyer.ID, draft.ID)
	require.Error(t, err)
	var ce *utils.CustomError
	require.True(t, utils.As(err, &ce))
	assert.Equal(t, utils.ErrNotFound.Code, ce.Code)
}

func TestCreatePurchaseFreeCollection(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artist := createUser(t, db, "seller5", true, 0)
	buyer := createUser(t, db, "shopper5", false, 0)
	free := createCollection(t, db, artist, "Free Walk", 0, true)

	p, err := CreatePurchase(ctx, db, buyer.ID, free.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, p.Price)

	owned, err := HasActivePurchase(ctx, db, buyer.ID, free.ID)
	require.NoError(t, err)
	assert.True(t, owned)
}
