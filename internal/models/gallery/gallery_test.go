package models

import (
	"context"
	"testing"

	user "github.com/arvue/arvue/internal/models/user"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
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

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&Genre{},
		&Collection{},
		&CollectionObject{},
		&CollectionLike{},
		&CollectionView{},
		&CollectionRating{},
		&Object{},
		&PlacedObject{},
		&Purchase{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, isArtist bool, tokens int64) *user.User {
	t.Helper()
	u := &user.User{
		FirstName:    "Test",
		LastName:     "User",
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsArtist:     isArtist,
		Tokens:       tokens,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createCollection(t *testing.T, db *gorm.DB, owner *user.User, title string, price int64, published bool) *Collection {
	t.Helper()
	c := &Collection{
		Type:        TypeTour,
		Title:       title,
		Description: "No description",
		City:        "Rotterdam",
		Price:       price,
		CreatedByID: owner.ID,
		IsPublished: published,
		IsActive:    true,
	}
	require.NoError(t, CreateCollection(context.Background(), db, c, nil))
	return c
}

func createObject(t *testing.T, db *gorm.DB, owner *user.User, title string) *Object {
	t.Helper()
	o := &Object{
		Title:        title,
		Description:  "No description provided",
		UploadedByID: owner.ID,
	}
	require.NoError(t, CreateObject(context.Background(), db, o))
	return o
}
