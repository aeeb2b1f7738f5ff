package v1

import (
	"fmt"
	"strings"

	"github.com/arvue/arvue/internal/auth"
	"github.com/arvue/arvue/internal/media"
	gallery "github.com/arvue/arvue/internal/models/gallery"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// CreateObject uploads a 3D model and registers it for the artist.
func CreateObject(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	obj := &gallery.Object{
		Title:        strings.TrimSpace(c.FormValue("title")),
		Description:  strings.TrimSpace(c.FormValue("description")),
		UploadedByID: artist.ID,
	}
	if obj.Description == "" {
		obj.Description = "No description provided"
	}

	if err := Validator.Validate(obj); err != nil {
		Logger.Warn(c.Context()).Logs(fmt.Sprintf("Object validation failed: %s", err))
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed")).WithData(err).Send()
	}

	ref, err := uploadFormFile(c, "file", media.KindObject)
	if err != nil {
		return utils.SendError(c, err)
	}
	obj.File = ref

	if err := gallery.CreateObject(c.Context(), DB, obj); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to create object")
		if derr := Media.Delete(c.Context(), ref.FileName, media.KindObject); derr != nil {
			Logger.Warn(c.Context()).WithFields("error", derr.Error()).Logs("Orphaned object file left behind")
		}
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("object_id", obj.ID.String(), "user_id", artist.ID.String()).Logs("Object created")
	return utils.Success(c, fiber.StatusCreated).WithData(fiber.Map{"object": obj}).Send()
}

// GetObjects lists the artist's own uploads.
func GetObjects(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	page, limit := pagination(c)

	objects, total, err := gallery.GetObjects(c.Context(), DB, artist.ID, page, limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	return sendListing(c, len(objects), fiber.Map{
		"objects":    objects,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

// GetObjectsByCollection lists the ordered objects of one owned
// collection.
func GetObjectsByCollection(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "collectionId", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	col, err := auth.OwnedCollection(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := col.LoadObjects(c.Context(), DB); err != nil {
		return utils.SendError(c, err)
	}
	return sendListing(c, len(col.Objects), fiber.Map{"objects": col.Objects})
}

// GetObject shows one owned object.
func GetObject(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Object not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	obj, err := auth.OwnedObject(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"object": obj}).Send()
}

// UpdateObject edits title and description. The file itself is
// immutable; artists upload a new object instead.
func UpdateObject(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Object not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	obj, err := auth.OwnedObject(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}

	type UpdateInput struct {
		Title       *string `json:"title" validate:"omitempty,min=1,max=35"`
		Description *string `json:"description" validate:"omitempty,max=500"`
	}
	in := new(UpdateInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed")).WithData(err).Send()
	}

	if in.Title != nil {
		obj.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		obj.Description = strings.TrimSpace(*in.Description)
	}

	if err := gallery.UpdateObject(c.Context(), DB, obj); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to update object")
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"object": obj}).Send()
}

// DeleteObject removes the upload. The primary file must leave the
// media store first; a stuck thumbnail only logs.
func DeleteObject(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Object not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	obj, err := auth.OwnedObject(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}

	if !obj.File.Empty() {
		if err := Media.Delete(c.Context(), obj.File.FileName, media.KindObject); err != nil {
			Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to delete object file")
			return utils.SendError(c, err)
		}
	}
	if !obj.Thumbnail.Empty() {
		if err := Media.Delete(c.Context(), obj.Thumbnail.FileName, media.KindThumbnail); err != nil {
			Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Orphaned thumbnail left behind")
		}
	}

	if err := gallery.DeleteObject(c.Context(), DB, obj); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to delete object")
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("object_id", id.String()).Logs("Object deleted")
	return utils.Success(c, fiber.StatusNoContent).Send()
}

// SetObjectThumbnail attaches or replaces the preview image.
func SetObjectThumbnail(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Object not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	obj, err := auth.OwnedObject(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}

	ref, err := uploadFormFile(c, "thumbnail", media.KindThumbnail)
	if err != nil {
		return utils.SendError(c, err)
	}

	old := obj.Thumbnail
	if err := obj.SetThumbnail(c.Context(), DB, ref); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to store thumbnail")
		return utils.SendError(c, err)
	}

	if !old.Empty() {
		if err := Media.Delete(c.Context(), old.FileName, media.KindThumbnail); err != nil {
			Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Failed to delete previous thumbnail")
		}
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"thumbnail": obj.Thumbnail}).Send()
}

// DeleteObjectThumbnail drops the preview image.
func DeleteObjectThumbnail(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Object not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	obj, err := auth.OwnedObject(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}
	if obj.Thumbnail.Empty() {
		return utils.Error(c, utils.NewError(utils.ErrNotFound.Code, "Object has no thumbnail")).Send()
	}

	if err := Media.Delete(c.Context(), obj.Thumbnail.FileName, media.KindThumbnail); err != nil {
		Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Failed to delete thumbnail from media store")
	}
	if err := obj.ClearThumbnail(c.Context(), DB); err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusNoContent).Send()
}
