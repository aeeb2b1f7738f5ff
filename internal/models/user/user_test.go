package models

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/arvue/arvue/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	// The in-memory database lives per connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&User{}))
	return db
}

func TestNewUserAppliesOptions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := NewUser(ctx, nil, db, "Vera", "Molnar", "vmolnar", "vera@example.com", "hash",
		WithArtist(true), WithTokens(25))
	require.NoError(t, err)
	assert.NotEqual(t, "", u.ID.String())
	assert.True(t, u.IsArtist)
	assert.EqualValues(t, 25, u.Tokens)
	assert.Equal(t, "Vera Molnar", u.FullName())

	stored, err := GetUserBy(ctx, nil, db, "username = ?", []interface{}{"vmolnar"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
	assert.True(t, stored.IsArtist)
}

func TestUsernameAndEmailAreUnique(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := NewUser(ctx, nil, db, "A", "One", "taken", "a@example.com", "hash")
	require.NoError(t, err)

	_, err = NewUser(ctx, nil, db, "B", "Two", "taken", "b@example.com", "hash")
	assert.Error(t, err)

	_, err = NewUser(ctx, nil, db, "C", "Three", "other", "a@example.com", "hash")
	assert.Error(t, err)
}

func TestGetUserByMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := GetUserBy(context.Background(), nil, db, "username = ?", []interface{}{"nobody"})
	require.Error(t, err)
	var ce *utils.CustomError
	require.True(t, utils.As(err, &ce))
	assert.Equal(t, utils.ErrNotFound.Code, ce.Code)
	assert.Equal(t, "User not found", ce.Message)
}

func TestAddTokensAccumulatesAndFloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := NewUser(ctx, nil, db, "D", "Four", "spender", "d@example.com", "hash", WithTokens(10))
	require.NoError(t, err)

	u, err = AddTokens(ctx, nil, db, u.ID, 40)
	require.NoError(t, err)
	assert.EqualValues(t, 50, u.Tokens)

	u, err = AddTokens(ctx, nil, db, u.ID, -50)
	require.NoError(t, err)
	assert.EqualValues(t, 0, u.Tokens)

	_, err = AddTokens(ctx, nil, db, u.ID, -1)
	require.Error(t, err)
	var ce *utils.CustomError
	require.True(t, utils.As(err, &ce))
	assert.Equal(t, utils.ErrBadRequest.Code, ce.Code)
	assert.Equal(t, "Insufficient tokens", ce.Message)

	fresh, err := GetUserBy(ctx, nil, db, "id = ?", []interface{}{u.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, fresh.Tokens)
}

func TestAddTokensUnknownUser(t *testing.T) {
	db := newTestDB(t)

	u := &User{}
	require.NoError(t, u.BeforeCreate(nil))
	_, err := AddTokens(context.Background(), nil, db, u.ID, 10)
	require.Error(t, err)
	var ce *utils.CustomError
	require.True(t, utils.As(err, &ce))
	assert.Equal(t, utils.ErrNotFound.Code, ce.Code)
}

func TestUpdateUserOptions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := NewUser(ctx, nil, db, "E", "Five", "renamer", "e@example.com", "hash")
	require.NoError(t, err)

	u, err = UpdateUser(ctx, nil, db, u.ID,
		WithName("Edith", "Fiverton"), WithUsername("renamed"), WithArtist(true))
	require.NoError(t, err)
	assert.Equal(t, "Edith Fiverton", u.FullName())
	assert.Equal(t, "renamed", u.Username)
	assert.True(t, u.IsArtist)

	stored, err := GetUserBy(ctx, nil, db, "id = ?", []interface{}{u.ID})
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Username)
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := NewUser(ctx, nil, db, "F", "Six", "leaver", "f@example.com", "hash")
	require.NoError(t, err)

	require.NoError(t, DeleteUser(ctx, nil, db, u.ID))
	_, err = GetUserBy(ctx, nil, db, "id = ?", []interface{}{u.ID})
	require.Error(t, err)
}
