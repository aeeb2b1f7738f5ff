package models

import (
	"context"
	"errors"
	"time"

	"github.com/arvue/arvue/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transform is a 3-axis vector used for scale and rotation.
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Placement locates an object in the world: geographic anchor plus the
// local offset from it.
type Placement struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
}

// Origin is where the placing device stood when the object was pinned.
type Origin struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Heading float64 `json:"heading"`
}

// PlacedObject is one object pinned inside a collection. The client
// generates the id so the editor can save the same placement
// repeatedly; saving an existing id updates the transform in place.
type PlacedObject struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	CollectionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"collection_id"`
	Collection   Collection `gorm:"foreignKey:CollectionID" json:"-" validate:"-"`
	ObjectID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"object_id"`
	Object       Object     `gorm:"foreignKey:ObjectID" json:"object" validate:"-"`

	Position      Placement `gorm:"embedded;embeddedPrefix:pos_" json:"position"`
	Scale         Transform `gorm:"embedded;embeddedPrefix:scale_" json:"scale"`
	Rotation      Transform `gorm:"embedded;embeddedPrefix:rot_" json:"rotation"`
	DeviceHeading float64   `json:"deviceHeading"`
	Origin        Origin    `gorm:"embedded;embeddedPrefix:origin_" json:"origin"`
}

// SavePlacedObject upserts a placement by its client-supplied id.
// Reports whether a new row was created.
func SavePlacedObject(ctx context.Context, db *gorm.DB, p *PlacedObject) (bool, error) {
	var existing PlacedObject
	err := db.WithContext(ctx).Where("id = ?", p.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := db.WithContext(ctx).Omit("Collection", "Object").Create(p).Error; err != nil {
			return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to place object")
		}
		return true, nil
	}
	if err != nil {
		return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load placed object")
	}

	// Only the transform moves on re-save; the placement stays bound to
	// its collection and object.
	updates := map[string]interface{}{
		"pos_lat": p.Position.Lat, "pos_lon": p.Position.Lon,
		"pos_x": p.Position.X, "pos_y": p.Position.Y, "pos_z": p.Position.Z,
		"scale_x": p.Scale.X, "scale_y": p.Scale.Y, "scale_z": p.Scale.Z,
		"rot_x": p.Rotation.X, "rot_y": p.Rotation.Y, "rot_z": p.Rotation.Z,
		"device_heading": p.DeviceHeading,
		"origin_lat":     p.Origin.Lat, "origin_lon": p.Origin.Lon, "origin_heading": p.Origin.Heading,
	}
	if err := db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update placed object")
	}
	p.CollectionID = existing.CollectionID
	p.ObjectID = existing.ObjectID
	p.CreatedAt = existing.CreatedAt
	return false, nil
}

// GetPlacedObjectBy retrieves a single placement matching the condition.
func GetPlacedObjectBy(ctx context.Context, db *gorm.DB, condition string, args []interface{}, preload ...string) (*PlacedObject, error) {
	var p PlacedObject
	query := db.WithContext(ctx).Where(condition, args...)
	for _, pl := range preload {
		if pl != "" {
			query = query.Preload(pl)
		}
	}
	if err := query.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Placed object not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get placed object")
	}
	return &p, nil
}

// GetPlacedObjects lists a collection's placements, oldest first, with
// their objects populated.
func GetPlacedObjects(ctx context.Context, db *gorm.DB, collectionID uuid.UUID) ([]PlacedObject, error) {
	var placed []PlacedObject
	err := db.WithContext(ctx).
		Preload("Object").
		Where("collection_id = ?", collectionID).
		Order("created_at ASC").
		Find(&placed).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get placed objects")
	}
	return placed, nil
}

// DeletePlacedObject removes a placement.
func DeletePlacedObject(ctx context.Context, db *gorm.DB, p *PlacedObject) error {
	if err := db.WithContext(ctx).Delete(p).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete placed object")
	}
	return nil
}
