package models

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/arvue/arvue/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Genre tags collections for discovery. Names are unique
// case-insensitively and stored in capitalized form.
type Genre struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Name string `gorm:"size:35;not null;unique" json:"name" validate:"required,min=1,max=35,genrename"`
}

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// CapitalizeGenreName uppercases the first letter of every space- or
// hyphen-separated segment and lowercases the rest, so "street art"
// and "Street ART" normalize to the same stored name.
func CapitalizeGenreName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	startOfSegment := true
	for _, r := range name {
		switch {
		case r == ' ' || r == '-':
			startOfSegment = true
			b.WriteRune(r)
		case startOfSegment:
			b.WriteRune(unicode.ToUpper(r))
			startOfSegment = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// NewGenre persists a genre after normalizing its name. A name that
// already exists in any casing is a conflict.
func NewGenre(ctx context.Context, db *gorm.DB, name string) (*Genre, error) {
	name = CapitalizeGenreName(strings.TrimSpace(name))

	var existing Genre
	err := db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return nil, utils.NewError(utils.ErrConflict.Code, "Genre already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check genre name")
	}

	g := &Genre{Name: name}
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create genre")
	}
	return g, nil
}

// GetGenres lists all genres alphabetically.
func GetGenres(ctx context.Context, db *gorm.DB) ([]Genre, error) {
	var genres []Genre
	if err := db.WithContext(ctx).Order("name ASC").Find(&genres).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get genres")
	}
	return genres, nil
}

// GetGenreBy retrieves a single genre matching the condition.
func GetGenreBy(ctx context.Context, db *gorm.DB, condition string, args []interface{}) (*Genre, error) {
	var g Genre
	if err := db.WithContext(ctx).Where(condition, args...).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Genre not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get genre")
	}
	return &g, nil
}

// GenresExist resolves a list of genre ids, reporting whether every id
// matched a stored genre.
func GenresExist(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]Genre, bool, error) {
	if len(ids) == 0 {
		return nil, true, nil
	}
	var genres []Genre
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&genres).Error; err != nil {
		return nil, false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to resolve genres")
	}
	found := make(map[uuid.UUID]bool, len(genres))
	for _, g := range genres {
		found[g.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return genres, false, nil
		}
	}
	return genres, true, nil
}
