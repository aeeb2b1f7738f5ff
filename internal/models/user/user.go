package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/arvue/arvue/internal/media"
	storage "github.com/arvue/arvue/pkg/redis"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account holder. Artists can upload objects and publish
// collections; every user can browse and buy. Tokens is the spendable
// balance in whole tokens.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	FirstName    string `gorm:"size:100;not null" json:"firstName" validate:"required,max=100"`
	LastName     string `gorm:"size:100;not null" json:"lastName" validate:"required,max=100"`
	Username     string `gorm:"size:50;not null;unique" json:"username" validate:"required,min=3,max=50"`
	Email        string `gorm:"size:100;not null;unique" json:"email" validate:"required,email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	IsArtist     bool   `gorm:"default:false" json:"isArtist"`
	Tokens       int64  `gorm:"not null;default:0" json:"tokens"`

	ProfilePicture media.Ref `gorm:"embedded;embeddedPrefix:picture_" json:"profilePicture"`
}

// BeforeCreate assigns the primary key when the driver has no
// server-side uuid default.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserOption configures a User.
type UserOption func(*User)

// NewUser persists a new account and warms the cache.
func NewUser(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, firstName, lastName, username, email, passwordHash string, opts ...UserOption) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "signup canceled")
	}

	u := &User{
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	for _, opt := range opts {
		opt(u)
	}

	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create user in database")
	}

	CacheUser(ctx, rclient, u)
	return u, nil
}

// GetUserBy retrieves a single user matching the condition.
func GetUserBy(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, condition string, args []interface{}, preload ...string) (*User, error) {
	var u User
	query := db.WithContext(ctx).Where(condition, args...)
	for _, p := range preload {
		if p != "" {
			query = query.Preload(p)
		}
	}
	if err := query.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.ErrNotFound.Code, "User not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get user")
	}
	return &u, nil
}

// GetUserByID looks up a user by primary key, trying the cache first.
func GetUserByID(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID) (*User, error) {
	if rclient != nil {
		if cached, err := rclient.Get(ctx, userKey(id)).Result(); err == nil {
			var u User
			if json.Unmarshal([]byte(cached), &u) == nil {
				return &u, nil
			}
		}
	}

	u, err := GetUserBy(ctx, rclient, db, "id = ?", []interface{}{id})
	if err != nil {
		return nil, err
	}
	CacheUser(ctx, rclient, u)
	return u, nil
}

// GetUsers lists accounts with pagination, newest first.
func GetUsers(ctx context.Context, db *gorm.DB, page, limit int) ([]User, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count users")
	}

	var users []User
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get users")
	}
	return users, total, nil
}

// GetArtists lists artist accounts with pagination, newest first.
func GetArtists(ctx context.Context, db *gorm.DB, page, limit int) ([]User, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&User{}).Where("is_artist = ?", true).Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count artists")
	}

	var artists []User
	err := db.WithContext(ctx).
		Where("is_artist = ?", true).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&artists).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get artists")
	}
	return artists, total, nil
}

// UpdateUser applies options to an existing user and refreshes the cache.
func UpdateUser(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID, opts ...UserOption) (*User, error) {
	u, err := GetUserBy(ctx, rclient, db, "id = ?", []interface{}{id})
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(u)
	}

	if err := db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update user")
	}

	CacheUser(ctx, rclient, u)
	return u, nil
}

// DeleteUser removes an account and clears its cache entry.
func DeleteUser(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID) error {
	u, err := GetUserBy(ctx, rclient, db, "id = ?", []interface{}{id})
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Delete(u).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete user")
	}

	InvalidateUser(ctx, rclient, id)
	return nil
}

// AddTokens credits (or with a negative amount debits) a balance
// atomically and returns the reloaded user. A debit below zero fails.
func AddTokens(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, id uuid.UUID, amount int64) (*User, error) {
	res := db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND tokens + ? >= 0", id, amount).
		Update("tokens", gorm.Expr("tokens + ?", amount))
	if res.Error != nil {
		return nil, utils.WrapError(res.Error, utils.ErrInternalServerError.Code, "Failed to update token balance")
	}
	if res.RowsAffected == 0 {
		if _, err := GetUserBy(ctx, rclient, db, "id = ?", []interface{}{id}); err != nil {
			return nil, err
		}
		return nil, utils.NewError(utils.ErrBadRequest.Code, "Insufficient tokens")
	}

	InvalidateUser(ctx, rclient, id)
	return GetUserBy(ctx, rclient, db, "id = ?", []interface{}{id})
}

// SetPassword stores a new password hash.
func (u *User) SetPassword(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, hash string) error {
	u.PasswordHash = hash
	if err := db.WithContext(ctx).Model(u).Update("password_hash", hash).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update password")
	}
	CacheUser(ctx, rclient, u)
	return nil
}

// CacheUser stores the user JSON in Redis for a short while. A nil
// client is a no-op so tests can run without Redis.
func CacheUser(ctx context.Context, rclient *storage.RedisClient, u *User) {
	if rclient == nil {
		return
	}
	userJSON, err := json.Marshal(u)
	if err != nil {
		return
	}
	rclient.Set(ctx, userKey(u.ID), userJSON, 30*time.Minute)
}

// InvalidateUser drops the cached copy of a user.
func InvalidateUser(ctx context.Context, rclient *storage.RedisClient, id uuid.UUID) {
	if rclient == nil {
		return
	}
	rclient.Del(ctx, userKey(id))
}

func userKey(id uuid.UUID) string {
	return "user:" + id.String()
}
