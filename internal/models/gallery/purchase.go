package models

import (
	"context"
	"errors"
	"time"

	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment states. Purchases settle immediately from the token balance,
// so completed is the only state the debit flow produces.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// PurchaseTTL is how long a bought collection stays accessible.
const PurchaseTTL = 30 * 24 * time.Hour

// Purchase grants a buyer access to a collection. Price is a snapshot
// of what was paid, independent of later price changes.
type Purchase struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	CollectionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"collection_id"`
	Collection   Collection `gorm:"foreignKey:CollectionID" json:"collection" validate:"-"`

	Price         int64     `gorm:"not null" json:"price"`
	PaymentStatus string    `gorm:"size:20;not null;default:'completed'" json:"paymentStatus"`
	PurchasedAt   time.Time `gorm:"not null" json:"purchasedAt"`
	ExpiresAt     time.Time `gorm:"not null" json:"expiresAt"`
	IsActive      bool      `gorm:"default:true" json:"isActive"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CreatePurchase buys a collection for the user. The existence check,
// the balance debit and the purchase insert run in one transaction, so
// a concurrent double-submit cannot debit twice or leave a purchase
// without its payment.
func CreatePurchase(ctx context.Context, db *gorm.DB, userID, collectionID uuid.UUID) (*Purchase, error) {
	var purchase *Purchase
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Collection
		err := tx.Where("id = ? AND is_published = ? AND is_active = ?", collectionID, true, true).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewError(utils.ErrNotFound.Code, "Collection not found")
		}
		if err != nil {
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get collection")
		}

		var owned int64
		err = tx.Model(&Purchase{}).
			Where("user_id = ? AND collection_id = ? AND is_active = ?", userID, collectionID, true).
			Count(&owned).Error
		if err != nil {
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check purchases")
		}
		if owned > 0 {
			return utils.NewError(utils.ErrConflict.Code, "You already own this collection")
		}

		// Debit with a floor check in the same statement; zero rows
		// means the balance would go negative.
		res := tx.Model(&user.User{}).
			Where("id = ? AND tokens >= ?", userID, c.Price).
			Update("tokens", gorm.Expr("tokens - ?", c.Price))
		if res.Error != nil {
			return utils.WrapError(res.Error, utils.ErrInternalServerError.Code, "Failed to debit tokens")
		}
		if res.RowsAffected == 0 {
			return utils.NewError(utils.ErrBadRequest.Code, "Insufficient tokens")
		}

		now := time.Now()
		purchase = &Purchase{
			UserID:        userID,
			CollectionID:  collectionID,
			Price:         c.Price,
			PaymentStatus: PaymentCompleted,
			PurchasedAt:   now,
			ExpiresAt:     now.Add(PurchaseTTL),
			IsActive:      true,
		}
		if err := tx.Omit("Collection").Create(purchase).Error; err != nil {
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create purchase")
		}
		purchase.Collection = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// GetPurchases lists the user's purchases, newest first, with the
// collection populated.
func GetPurchases(ctx context.Context, db *gorm.DB, userID uuid.UUID, page, limit int) ([]Purchase, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&Purchase{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count purchases")
	}

	var purchases []Purchase
	err := db.WithContext(ctx).
		Preload("Collection").
		Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get purchases")
	}
	return purchases, total, nil
}

// HasActivePurchase reports whether the user currently owns the
// collection.
func HasActivePurchase(ctx context.Context, db *gorm.DB, userID, collectionID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&Purchase{}).
		Where("user_id = ? AND collection_id = ? AND is_active = ?", userID, collectionID, true).
		Count(&n).Error
	if err != nil {
		return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check purchases")
	}
	return n > 0, nil
}
