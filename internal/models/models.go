package models

import (
	gallery "github.com/arvue/arvue/internal/models/gallery"
	user "github.com/arvue/arvue/internal/models/user"
)

// RegisterModels lists every persisted type for AutoMigrate.
func RegisterModels() []interface{} {
	return []interface{}{
		&user.User{},
		&gallery.Genre{},
		&gallery.Collection{},
		&gallery.CollectionObject{},
		&gallery.CollectionLike{},
		&gallery.CollectionView{},
		&gallery.CollectionRating{},
		&gallery.Object{},
		&gallery.PlacedObject{},
		&gallery.Purchase{},
	}
}

type (
	User             = user.User
	Genre            = gallery.Genre
	Collection       = gallery.Collection
	CollectionObject = gallery.CollectionObject
	CollectionRating = gallery.CollectionRating
	Object           = gallery.Object
	PlacedObject     = gallery.PlacedObject
	Purchase         = gallery.Purchase
)
