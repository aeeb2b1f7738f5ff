package v1

import (
	"github.com/arvue/arvue/internal/auth"
	gallery "github.com/arvue/arvue/internal/models/gallery"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SavePlacedObject upserts a placement by its client-supplied id. A
// fresh id pins the object into the collection (201); a known id moves
// the existing placement (200).
func SavePlacedObject(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	type PlacementInput struct {
		ID            string            `json:"id" validate:"required,uuid"`
		CollectionID  string            `json:"collectionId" validate:"required,uuid"`
		ObjectID      string            `json:"objectId" validate:"required,uuid"`
		Position      gallery.Placement `json:"position"`
		Scale         gallery.Transform `json:"scale"`
		Rotation      gallery.Transform `json:"rotation"`
		DeviceHeading float64           `json:"deviceHeading"`
		Origin        gallery.Origin    `json:"origin"`
	}
	in := new(PlacementInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed")).WithData(err).Send()
	}

	placementID := uuid.MustParse(in.ID)
	collectionID := uuid.MustParse(in.CollectionID)
	objectID := uuid.MustParse(in.ObjectID)

	// The caller must own both sides of the placement.
	col, err := auth.OwnedCollection(c, DB, artist, collectionID)
	if err != nil {
		return utils.SendError(c, err)
	}
	if _, err := auth.OwnedObject(c, DB, artist, objectID); err != nil {
		return utils.SendError(c, err)
	}

	p := &gallery.PlacedObject{
		ID:            placementID,
		CollectionID:  col.ID,
		ObjectID:      objectID,
		Position:      in.Position,
		Scale:         in.Scale,
		Rotation:      in.Rotation,
		DeviceHeading: in.DeviceHeading,
		Origin:        in.Origin,
	}

	// An id that resolves to a placement in someone else's collection
	// must not be movable from here.
	if existing, err := gallery.GetPlacedObjectBy(c.Context(), DB, "id = ?", []interface{}{placementID}); err == nil {
		if _, err := auth.OwnedCollection(c, DB, artist, existing.CollectionID); err != nil {
			return utils.SendError(c, utils.NewError(utils.ErrNotFound.Code, "Placed object not found"))
		}
	}

	created, err := gallery.SavePlacedObject(c.Context(), DB, p)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to save placed object")
		return utils.SendError(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return utils.Success(c, status).WithData(fiber.Map{"placedObject": p}).Send()
}

// GetPlacedObjectsByCollection lists a collection's placements with
// their objects populated.
func GetPlacedObjectsByCollection(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	collectionID, err := paramUUID(c, "collectionId", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	col, err := gallery.GetCollectionBy(c.Context(), DB, "id = ?", []interface{}{collectionID})
	if err != nil {
		return utils.SendError(c, err)
	}

	// Placements are visible to the owner and to buyers of a
	// published collection.
	if col.CreatedByID != principal.ID {
		owned, err := gallery.HasActivePurchase(c.Context(), DB, principal.ID, col.ID)
		if err != nil {
			return utils.SendError(c, err)
		}
		if !owned || !col.IsPublished || !col.IsActive {
			return utils.SendError(c, utils.NewError(utils.ErrNotFound.Code, "Collection not found"))
		}
	}

	placed, err := gallery.GetPlacedObjects(c.Context(), DB, col.ID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return sendListing(c, len(placed), fiber.Map{"placedObjects": placed})
}

// GetPlacedObject shows one placement.
func GetPlacedObject(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Placed object not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	p, err := gallery.GetPlacedObjectBy(c.Context(), DB, "id = ?", []interface{}{id}, "Object")
	if err != nil {
		return utils.SendError(c, err)
	}
	if _, err := auth.OwnedCollection(c, DB, artist, p.CollectionID); err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrNotFound.Code, "Placed object not found"))
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"placedObject": p}).Send()
}

// DeletePlacedObject unpins an object. Only the owner of the parent
// collection may do this.
func DeletePlacedObject(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Placed object not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	p, err := gallery.GetPlacedObjectBy(c.Context(), DB, "id = ?", []interface{}{id})
	if err != nil {
		return utils.SendError(c, err)
	}
	if _, err := auth.OwnedCollection(c, DB, artist, p.CollectionID); err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrNotFound.Code, "Placed object not found"))
	}

	if err := gallery.DeletePlacedObject(c.Context(), DB, p); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to delete placed object")
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusNoContent).Send()
}
