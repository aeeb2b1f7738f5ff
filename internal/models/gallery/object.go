package models

import (
	"context"
	"errors"
	"time"

	"github.com/arvue/arvue/internal/media"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Object is a 3D asset an artist uploaded. File is the model itself,
// Thumbnail an optional preview image.
type Object struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Title        string    `gorm:"size:35;not null" json:"title" validate:"required,min=1,max=35"`
	Description  string    `gorm:"size:500;default:'No description provided'" json:"description" validate:"omitempty,max=500"`
	UploadedByID uuid.UUID `gorm:"type:uuid;not null;index" json:"uploadedBy"`
	UploadedBy   user.User `gorm:"foreignKey:UploadedByID" json:"-" validate:"-"`

	File      media.Ref `gorm:"embedded;embeddedPrefix:file_" json:"file"`
	Thumbnail media.Ref `gorm:"embedded;embeddedPrefix:thumb_" json:"thumbnail"`
}

func (o *Object) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// CreateObject persists a freshly uploaded object.
func CreateObject(ctx context.Context, db *gorm.DB, o *Object) error {
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create object")
	}
	return nil
}

// GetObjectBy retrieves a single object matching the condition.
func GetObjectBy(ctx context.Context, db *gorm.DB, condition string, args []interface{}, preload ...string) (*Object, error) {
	var o Object
	query := db.WithContext(ctx).Where(condition, args...)
	for _, p := range preload {
		if p != "" {
			query = query.Preload(p)
		}
	}
	if err := query.First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Object not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get object")
	}
	return &o, nil
}

// GetObjects lists an owner's objects, newest first.
func GetObjects(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, page, limit int) ([]Object, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&Object{}).Where("uploaded_by_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count objects")
	}

	var objects []Object
	err := db.WithContext(ctx).
		Where("uploaded_by_id = ?", ownerID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&objects).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get objects")
	}
	return objects, total, nil
}

// GetObjectsByIDs resolves objects owned by ownerID, reporting which of
// the requested ids did not resolve. Objects owned by somebody else
// count as missing.
func GetObjectsByIDs(ctx context.Context, db *gorm.DB, ownerID uuid.UUID, ids []uuid.UUID) ([]Object, []uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	var objects []Object
	err := db.WithContext(ctx).
		Where("id IN ? AND uploaded_by_id = ?", ids, ownerID).
		Find(&objects).Error
	if err != nil {
		return nil, nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to resolve objects")
	}

	found := make(map[uuid.UUID]bool, len(objects))
	for _, o := range objects {
		found[o.ID] = true
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return objects, missing, nil
}

// UpdateObject saves edited metadata.
func UpdateObject(ctx context.Context, db *gorm.DB, o *Object) error {
	if err := db.WithContext(ctx).Save(o).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update object")
	}
	return nil
}

// SetThumbnail stores a thumbnail reference on the object.
func (o *Object) SetThumbnail(ctx context.Context, db *gorm.DB, ref media.Ref) error {
	o.Thumbnail = ref
	err := db.WithContext(ctx).Model(o).Updates(map[string]interface{}{
		"thumb_file_name": ref.FileName,
		"thumb_file_path": ref.FilePath,
		"thumb_file_type": ref.FileType,
		"thumb_file_size": ref.FileSize,
	}).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update thumbnail")
	}
	return nil
}

// ClearThumbnail removes the thumbnail reference.
func (o *Object) ClearThumbnail(ctx context.Context, db *gorm.DB) error {
	return o.SetThumbnail(ctx, db, media.Ref{})
}

// DeleteObject removes the object plus the rows that point at it:
// collection memberships and placements go in the same transaction.
func DeleteObject(ctx context.Context, db *gorm.DB, o *Object) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("object_id = ?", o.ID).Delete(&PlacedObject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("object_id = ?", o.ID).Delete(&CollectionObject{}).Error; err != nil {
			return err
		}
		return tx.Delete(o).Error
	})
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete object")
	}
	return nil
}
