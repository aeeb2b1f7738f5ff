package v1

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arvue/arvue/internal/auth"
	"github.com/arvue/arvue/internal/media"
	gallery "github.com/arvue/arvue/internal/models/gallery"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateCollection makes a new draft collection from a multipart form.
// The cover image is required and stored before the row is written.
func CreateCollection(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	col := &gallery.Collection{
		Type:        strings.ToLower(strings.TrimSpace(c.FormValue("type"))),
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: strings.TrimSpace(c.FormValue("description")),
		City:        strings.TrimSpace(c.FormValue("city")),
		CreatedByID: artist.ID,
	}
	if col.Description == "" {
		col.Description = "No description"
	}

	if raw := c.FormValue("price"); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || price < 0 {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Price must be a non-negative integer")).Send()
		}
		col.Price = price
	}
	if raw := c.FormValue("maxObjects"); raw != "" {
		max, err := strconv.Atoi(raw)
		if err != nil || max < 1 {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "maxObjects must be a positive integer")).Send()
		}
		col.MaxObjects = max
	}
	if raw := c.FormValue("lat"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid latitude")).Send()
		}
		col.Lat = &lat
	}
	if raw := c.FormValue("lon"); raw != "" {
		lon, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid longitude")).Send()
		}
		col.Lon = &lon
	}

	if err := Validator.Validate(col); err != nil {
		Logger.Warn(c.Context()).Logs(fmt.Sprintf("Collection validation failed: %s", err))
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed")).WithData(err).Send()
	}

	genreIDs, err := resolveGenres(c, splitFormList(c.FormValue("genres")))
	if err != nil {
		return utils.SendError(c, err)
	}

	ref, err := uploadFormFile(c, "coverImage", media.KindCoverImage)
	if err != nil {
		return utils.SendError(c, err)
	}
	col.CoverImage = ref

	if err := gallery.CreateCollection(c.Context(), DB, col, genreIDs); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to create collection")
		// The cover upload is already out there; reclaim it.
		if derr := Media.Delete(c.Context(), ref.FileName, media.KindCoverImage); derr != nil {
			Logger.Warn(c.Context()).WithFields("error", derr.Error()).Logs("Orphaned cover image left behind")
		}
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("collection_id", col.ID.String(), "user_id", artist.ID.String()).Logs("Collection created")
	detail, err := collectionDetail(c, col)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated).WithData(fiber.Map{"collection": detail}).Send()
}

// GetMyCollections lists the artist's own collections, drafts included.
func GetMyCollections(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	page, limit := pagination(c)

	collections, total, err := gallery.GetCollections(c.Context(), DB,
		"created_by_id = ?", []interface{}{artist.ID}, page, limit, "Genres")
	if err != nil {
		return utils.SendError(c, err)
	}
	return sendCollectionPage(c, collections, page, limit, total)
}

// GetMyCollection shows one owned collection in full.
func GetMyCollection(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	col, err := auth.OwnedCollection(c, DB, artist, id, "Genres")
	if err != nil {
		return utils.SendError(c, err)
	}

	detail, err := collectionDetail(c, col)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"collection": detail}).Send()
}

// UpdateCollection edits metadata and optionally swaps the cover. The
// replacement is uploaded before the old image is removed, so a failed
// upload leaves the previous cover intact.
func UpdateCollection(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	col, err := auth.OwnedCollection(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}

	if v := c.FormValue("type"); v != "" {
		col.Type = strings.ToLower(strings.TrimSpace(v))
	}
	if v := c.FormValue("title"); v != "" {
		col.Title = strings.TrimSpace(v)
	}
	if v := c.FormValue("description"); v != "" {
		col.Description = strings.TrimSpace(v)
	}
	if v := c.FormValue("city"); v != "" {
		col.City = strings.TrimSpace(v)
	}
	if raw := c.FormValue("price"); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || price < 0 {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Price must be a non-negative integer")).Send()
		}
		col.Price = price
	}
	if raw := c.FormValue("lat"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid latitude")).Send()
		}
		col.Lat = &lat
	}
	if raw := c.FormValue("lon"); raw != "" {
		lon, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid longitude")).Send()
		}
		col.Lon = &lon
	}

	if err := Validator.Validate(col); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed")).WithData(err).Send()
	}

	oldCover := col.CoverImage
	replacedCover := false
	if file, err := c.FormFile("coverImage"); err == nil && file != nil {
		ref, err := uploadFormFile(c, "coverImage", media.KindCoverImage)
		if err != nil {
			return utils.SendError(c, err)
		}
		col.CoverImage = ref
		replacedCover = true
	}

	if raw := c.FormValue("genres"); raw != "" {
		genreIDs, err := resolveGenres(c, splitFormList(raw))
		if err != nil {
			return utils.SendError(c, err)
		}
		if err := col.SetGenres(c.Context(), DB, genreIDs); err != nil {
			return utils.SendError(c, err)
		}
	}

	if err := gallery.UpdateCollection(c.Context(), DB, col); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to update collection")
		return utils.SendError(c, err)
	}

	if replacedCover && !oldCover.Empty() {
		if err := Media.Delete(c.Context(), oldCover.FileName, media.KindCoverImage); err != nil {
			Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Failed to delete previous cover image")
		}
	}

	detail, err := collectionDetail(c, col)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"collection": detail}).Send()
}

// DeleteCollection removes a collection with everything hanging off
// it, then releases the cover asset.
func DeleteCollection(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	col, err := auth.OwnedCollection(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := col.DeleteCascade(c.Context(), DB); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to delete collection")
		return utils.SendError(c, err)
	}

	if !col.CoverImage.Empty() {
		if err := Media.Delete(c.Context(), col.CoverImage.FileName, media.KindCoverImage); err != nil {
			Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Orphaned cover image left behind")
		}
	}

	Logger.Info(c.Context()).WithFields("collection_id", id.String()).Logs("Collection deleted")
	return utils.Success(c, fiber.StatusNoContent).Send()
}

// AddCollectionObjects appends objects to the ordered list. Ids
// already present are skipped; unknown or foreign ids 404 listing the
// offenders.
func AddCollectionObjects(c *fiber.Ctx) error {
	return mutateCollectionObjects(c, false)
}

// ReplaceCollectionObjects swaps the whole ordered list.
func ReplaceCollectionObjects(c *fiber.Ctx) error {
	return mutateCollectionObjects(c, true)
}

func mutateCollectionObjects(c *fiber.Ctx, replace bool) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	col, err := auth.OwnedCollection(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}

	type ObjectsInput struct {
		Objects []string `json:"objects" validate:"required,min=1"`
	}
	in := new(ObjectsInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed")).WithData(err).Send()
	}

	ids := make([]uuid.UUID, 0, len(in.Objects))
	var malformed []string
	for _, s := range in.Objects {
		oid, err := uuid.Parse(s)
		if err != nil {
			malformed = append(malformed, s)
			continue
		}
		ids = append(ids, oid)
	}

	_, missing, err := gallery.GetObjectsByIDs(c.Context(), DB, artist.ID, ids)
	if err != nil {
		return utils.SendError(c, err)
	}
	for _, m := range missing {
		malformed = append(malformed, m.String())
	}
	if len(malformed) > 0 {
		return utils.Error(c, utils.NewError(utils.ErrNotFound.Code,
			fmt.Sprintf("Objects not found: %s", strings.Join(malformed, ", ")))).Send()
	}

	if replace {
		err = col.ReplaceObjects(c.Context(), DB, ids)
	} else {
		err = col.AddObjects(c.Context(), DB, ids)
	}
	if err != nil {
		return utils.SendError(c, err)
	}

	detail, err := collectionDetail(c, col)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"collection": detail}).Send()
}

// TogglePublishCollection flips draft/published.
func TogglePublishCollection(c *fiber.Ctx) error {
	artist, err := auth.RequireArtist(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	col, err := auth.OwnedCollection(c, DB, artist, id)
	if err != nil {
		return utils.SendError(c, err)
	}

	published, err := col.TogglePublish(c.Context(), DB)
	if err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("collection_id", id.String(), "published", fmt.Sprintf("%t", published)).Logs("Collection publish state changed")
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"isPublished": published}).Send()
}

// splitFormList reads a comma-separated multipart value into items.
func splitFormList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
