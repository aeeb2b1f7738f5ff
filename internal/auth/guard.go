package auth

import (
	gallery "github.com/arvue/arvue/internal/models/gallery"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Principal returns the authenticated user set by Protected. Handlers
// behind the middleware can rely on it being present.
func Principal(c *fiber.Ctx) (*user.User, error) {
	u, ok := c.Locals(LocalUser).(*user.User)
	if !ok || u == nil {
		return nil, utils.NewError(utils.ErrUnauthorized.Code, "Unauthorized")
	}
	return u, nil
}

// RequireArtist is for routes only artists may use.
func RequireArtist(c *fiber.Ctx) (*user.User, error) {
	u, err := Principal(c)
	if err != nil {
		return nil, err
	}
	if !u.IsArtist {
		return nil, utils.NewError(utils.ErrForbidden.Code, "Artist account required")
	}
	return u, nil
}

// OwnedCollection loads a collection scoped to its owner. A collection
// that exists but belongs to someone else answers the same 404 as one
// that does not exist, so ownership cannot be probed.
func OwnedCollection(c *fiber.Ctx, db *gorm.DB, owner *user.User, id uuid.UUID, preload ...string) (*gallery.Collection, error) {
	col, err := gallery.GetCollectionBy(c.Context(), db, "id = ? AND created_by_id = ?", []interface{}{id, owner.ID}, preload...)
	if err != nil {
		return nil, maskNotFound(err, "Collection not found")
	}
	return col, nil
}

// OwnedObject loads an object scoped to its uploader, masked the same
// way as OwnedCollection.
func OwnedObject(c *fiber.Ctx, db *gorm.DB, owner *user.User, id uuid.UUID, preload ...string) (*gallery.Object, error) {
	obj, err := gallery.GetObjectBy(c.Context(), db, "id = ? AND uploaded_by_id = ?", []interface{}{id, owner.ID}, preload...)
	if err != nil {
		return nil, maskNotFound(err, "Object not found")
	}
	return obj, nil
}

func maskNotFound(err error, msg string) error {
	var ce *utils.CustomError
	if utils.As(err, &ce) && ce.Code == utils.ErrNotFound.Code {
		return utils.NewError(utils.ErrNotFound.Code, msg)
	}
	return err
}
