package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arvue/arvue/internal/media"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collection types. A tour is walked through outdoors, an exposition
// is a single-site show.
const (
	TypeTour       = "tour"
	TypeExposition = "exposition"
)

// DefaultMaxObjects caps how many objects a collection can hold unless
// the artist raised the limit at creation.
const DefaultMaxObjects = 10

// Collection is a purchasable, ordered set of placed 3D objects
// curated by one artist.
type Collection struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Type        string `gorm:"size:20;not null" json:"type" validate:"required,collectiontype"`
	Title       string `gorm:"size:35;not null" json:"title" validate:"required,min=1,max=35"`
	Description string `gorm:"size:1000;default:'No description'" json:"description" validate:"omitempty,max=1000"`
	City        string `gorm:"size:100" json:"city" validate:"omitempty,max=100"`
	Price       int64  `gorm:"not null;default:0" json:"price" validate:"min=0"`
	MaxObjects  int    `gorm:"not null;default:10" json:"maxObjects"`

	CoverImage media.Ref `gorm:"embedded;embeddedPrefix:cover_" json:"coverImage"`

	CreatedByID uuid.UUID `gorm:"type:uuid;not null;index" json:"createdBy"`
	CreatedBy   user.User `gorm:"foreignKey:CreatedByID" json:"-" validate:"-"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	IsPublished bool `gorm:"default:false" json:"isPublished"`
	IsActive    bool `gorm:"default:true" json:"isActive"`

	Objects []Object           `gorm:"many2many:collection_objects" json:"objects,omitempty" validate:"-"`
	Genres  []Genre            `gorm:"many2many:collection_genres" json:"genres,omitempty" validate:"-"`
	Ratings []CollectionRating `gorm:"foreignKey:CollectionID" json:"-" validate:"-"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.MaxObjects == 0 {
		c.MaxObjects = DefaultMaxObjects
	}
	return nil
}

// CollectionObject is the ordered membership row between a collection
// and an object. Position starts at 0 and has no gaps.
type CollectionObject struct {
	CollectionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"collection_id"`
	ObjectID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"object_id"`
	Position     int       `gorm:"not null" json:"position"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CollectionRating records one user's 0-5 score. Re-rating overwrites.
type CollectionRating struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	CollectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_collection_rater" json:"collection_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_collection_rater" json:"user_id"`
	Rating       int       `gorm:"not null" json:"rating" validate:"min=0,max=5"`
}

func (r *CollectionRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CollectionLike marks one user's membership in a collection's like
// set. Liking is an involution, toggling removes the row again.
type CollectionLike struct {
	CollectionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"collection_id"`
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CollectionView marks that a user opened the public detail view at
// least once. The set only grows.
type CollectionView struct {
	CollectionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"collection_id"`
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Stats are the read-time aggregates derived from the like, view and
// rating sets. AverageRating is 0 when nobody rated yet.
type Stats struct {
	LikesCount    int64   `json:"likesCount"`
	ViewsCount    int64   `json:"viewsCount"`
	AverageRating float64 `json:"averageRating"`
}

// CreateCollection persists the collection and attaches its genres.
func CreateCollection(ctx context.Context, db *gorm.DB, c *Collection, genreIDs []uuid.UUID) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres", "Objects").Create(c).Error; err != nil {
			return err
		}
		for _, gid := range genreIDs {
			row := map[string]interface{}{"collection_id": c.ID, "genre_id": gid}
			if err := tx.Table("collection_genres").Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create collection")
	}
	return nil
}

// GetCollectionBy retrieves a single collection matching the condition.
func GetCollectionBy(ctx context.Context, db *gorm.DB, condition string, args []interface{}, preload ...string) (*Collection, error) {
	var c Collection
	query := db.WithContext(ctx).Where(condition, args...)
	for _, p := range preload {
		if p != "" {
			query = query.Preload(p)
		}
	}
	if err := query.First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Collection not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get collection")
	}
	return &c, nil
}

// GetCollections lists collections matching the condition, newest
// first, with the total for pagination.
func GetCollections(ctx context.Context, db *gorm.DB, condition string, args []interface{}, page, limit int, preload ...string) ([]Collection, int64, error) {
	base := db.WithContext(ctx).Model(&Collection{})
	if condition != "" {
		base = base.Where(condition, args...)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count collections")
	}

	query := db.WithContext(ctx)
	if condition != "" {
		query = query.Where(condition, args...)
	}
	for _, p := range preload {
		if p != "" {
			query = query.Preload(p)
		}
	}
	var collections []Collection
	err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&collections).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get collections")
	}
	return collections, total, nil
}

// GetCollectionsByGenre lists published, active collections tagged
// with the genre.
func GetCollectionsByGenre(ctx context.Context, db *gorm.DB, genreID uuid.UUID, page, limit int, preload ...string) ([]Collection, int64, error) {
	base := db.WithContext(ctx).Model(&Collection{}).
		Joins("JOIN collection_genres cg ON cg.collection_id = collections.id").
		Where("cg.genre_id = ? AND collections.is_published = ? AND collections.is_active = ?", genreID, true, true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count collections")
	}

	query := db.WithContext(ctx).
		Joins("JOIN collection_genres cg ON cg.collection_id = collections.id").
		Where("cg.genre_id = ? AND collections.is_published = ? AND collections.is_active = ?", genreID, true, true)
	for _, p := range preload {
		if p != "" {
			query = query.Preload(p)
		}
	}
	var collections []Collection
	err := query.Order("collections.created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&collections).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get collections")
	}
	return collections, total, nil
}

// UpdateCollection saves edited fields.
func UpdateCollection(ctx context.Context, db *gorm.DB, c *Collection) error {
	if err := db.WithContext(ctx).Omit("Genres", "Objects", "Ratings").Save(c).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update collection")
	}
	return nil
}

// SetGenres replaces the genre tags outright.
func (c *Collection) SetGenres(ctx context.Context, db *gorm.DB, genreIDs []uuid.UUID) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM collection_genres WHERE collection_id = ?", c.ID).Error; err != nil {
			return err
		}
		for _, gid := range genreIDs {
			row := map[string]interface{}{"collection_id": c.ID, "genre_id": gid}
			if err := tx.Table("collection_genres").Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to set genres")
	}
	return nil
}

// AddObjects appends objects to the ordered list, skipping ones
// already present. The request order decides the appended order.
func (c *Collection) AddObjects(ctx context.Context, db *gorm.DB, objectIDs []uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []CollectionObject
		if err := tx.Where("collection_id = ?", c.ID).Order("position ASC").Find(&existing).Error; err != nil {
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load collection objects")
		}

		present := make(map[uuid.UUID]bool, len(existing))
		for _, row := range existing {
			present[row.ObjectID] = true
		}

		var fresh []uuid.UUID
		for _, id := range objectIDs {
			if !present[id] {
				present[id] = true
				fresh = append(fresh, id)
			}
		}

		if len(existing)+len(fresh) > c.MaxObjects {
			return utils.NewError(utils.ErrBadRequest.Code,
				fmt.Sprintf("Collection can hold at most %d objects", c.MaxObjects))
		}

		pos := len(existing)
		for _, id := range fresh {
			row := CollectionObject{CollectionID: c.ID, ObjectID: id, Position: pos}
			if err := tx.Create(&row).Error; err != nil {
				return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to add object to collection")
			}
			pos++
		}
		return nil
	})
}

// ReplaceObjects swaps the whole ordered list for the given one.
func (c *Collection) ReplaceObjects(ctx context.Context, db *gorm.DB, objectIDs []uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := make(map[uuid.UUID]bool, len(objectIDs))
		var ordered []uuid.UUID
		for _, id := range objectIDs {
			if !seen[id] {
				seen[id] = true
				ordered = append(ordered, id)
			}
		}

		if len(ordered) > c.MaxObjects {
			return utils.NewError(utils.ErrBadRequest.Code,
				fmt.Sprintf("Collection can hold at most %d objects", c.MaxObjects))
		}

		if err := tx.Where("collection_id = ?", c.ID).Delete(&CollectionObject{}).Error; err != nil {
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to clear collection objects")
		}
		for pos, id := range ordered {
			row := CollectionObject{CollectionID: c.ID, ObjectID: id, Position: pos}
			if err := tx.Create(&row).Error; err != nil {
				return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to add object to collection")
			}
		}
		return nil
	})
}

// LoadObjects fills c.Objects in placement order.
func (c *Collection) LoadObjects(ctx context.Context, db *gorm.DB) error {
	var objects []Object
	err := db.WithContext(ctx).
		Joins("JOIN collection_objects co ON co.object_id = objects.id").
		Where("co.collection_id = ?", c.ID).
		Order("co.position ASC").
		Find(&objects).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load collection objects")
	}
	c.Objects = objects
	return nil
}

// ObjectCount reports how many objects the collection holds.
func (c *Collection) ObjectCount(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&CollectionObject{}).Where("collection_id = ?", c.ID).Count(&n).Error
	if err != nil {
		return 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count collection objects")
	}
	return n, nil
}

// ToggleLike flips the caller's membership in the like set and reports
// the new state with the resulting count.
func (c *Collection) ToggleLike(ctx context.Context, db *gorm.DB, userID uuid.UUID) (bool, int64, error) {
	var liked bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&CollectionLike{}).
			Where("collection_id = ? AND user_id = ?", c.ID, userID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return tx.Where("collection_id = ? AND user_id = ?", c.ID, userID).
				Delete(&CollectionLike{}).Error
		}
		liked = true
		return tx.Create(&CollectionLike{CollectionID: c.ID, UserID: userID}).Error
	})
	if err != nil {
		return false, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to toggle like")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&CollectionLike{}).Where("collection_id = ?", c.ID).Count(&count).Error; err != nil {
		return liked, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count likes")
	}
	return liked, count, nil
}

// LikedBy reports whether the user is in the like set.
func (c *Collection) LikedBy(ctx context.Context, db *gorm.DB, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&CollectionLike{}).
		Where("collection_id = ? AND user_id = ?", c.ID, userID).
		Count(&n).Error
	if err != nil {
		return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check like")
	}
	return n > 0, nil
}

// AddView records the viewer into the view set. Repeat views of the
// same user do not grow the set.
func (c *Collection) AddView(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	var n int64
	err := db.WithContext(ctx).Model(&CollectionView{}).
		Where("collection_id = ? AND user_id = ?", c.ID, userID).
		Count(&n).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check view")
	}
	if n > 0 {
		return nil
	}
	if err := db.WithContext(ctx).Create(&CollectionView{CollectionID: c.ID, UserID: userID}).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to record view")
	}
	return nil
}

// Rate stores the user's rating, overwriting an earlier one.
func (c *Collection) Rate(ctx context.Context, db *gorm.DB, userID uuid.UUID, rating int) error {
	if rating < 0 || rating > 5 {
		return utils.NewError(utils.ErrBadRequest.Code, "Rating must be between 0 and 5")
	}
	row := CollectionRating{CollectionID: c.ID, UserID: userID, Rating: rating}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"rating": rating, "updated_at": time.Now()}),
	}).Create(&row).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to rate collection")
	}
	return nil
}

// Aggregates computes the derived counters for display.
func (c *Collection) Aggregates(ctx context.Context, db *gorm.DB) (Stats, error) {
	var s Stats
	if err := db.WithContext(ctx).Model(&CollectionLike{}).Where("collection_id = ?", c.ID).Count(&s.LikesCount).Error; err != nil {
		return s, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count likes")
	}
	if err := db.WithContext(ctx).Model(&CollectionView{}).Where("collection_id = ?", c.ID).Count(&s.ViewsCount).Error; err != nil {
		return s, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count views")
	}
	err := db.WithContext(ctx).Model(&CollectionRating{}).
		Where("collection_id = ?", c.ID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&s.AverageRating).Error
	if err != nil {
		return s, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to average ratings")
	}
	return s, nil
}

// DeleteCascade removes the collection together with everything that
// hangs off it: placements, purchases, memberships, genre tags, likes,
// views and ratings, all in one transaction.
func (c *Collection) DeleteCascade(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", c.ID).Delete(&PlacedObject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", c.ID).Delete(&Purchase{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", c.ID).Delete(&CollectionObject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", c.ID).Delete(&CollectionRating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", c.ID).Delete(&CollectionLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", c.ID).Delete(&CollectionView{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM collection_genres WHERE collection_id = ?", c.ID).Error; err != nil {
			return err
		}
		return tx.Delete(c).Error
	})
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete collection")
	}
	return nil
}

// TogglePublish flips visibility and reports the new state.
func (c *Collection) TogglePublish(ctx context.Context, db *gorm.DB) (bool, error) {
	c.IsPublished = !c.IsPublished
	err := db.WithContext(ctx).Model(c).Update("is_published", c.IsPublished).Error
	if err != nil {
		return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update collection")
	}
	return c.IsPublished, nil
}
