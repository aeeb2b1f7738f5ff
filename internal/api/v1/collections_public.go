package v1

import (
	"github.com/arvue/arvue/internal/auth"
	gallery "github.com/arvue/arvue/internal/models/gallery"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// GetCollections lists published, active collections for browsing.
func GetCollections(c *fiber.Ctx) error {
	page, limit := pagination(c)

	collections, total, err := gallery.GetCollections(c.Context(), DB,
		"is_published = ? AND is_active = ?", []interface{}{true, true}, page, limit, "Genres")
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to list collections")
		return utils.SendError(c, err)
	}

	return sendCollectionPage(c, collections, page, limit, total)
}

// GetCollectionsByCreator lists one artist's published collections.
func GetCollectionsByCreator(c *fiber.Ctx) error {
	creatorID, err := paramUUID(c, "creatorId", "Artist not found")
	if err != nil {
		return utils.SendError(c, err)
	}
	page, limit := pagination(c)

	collections, total, err := gallery.GetCollections(c.Context(), DB,
		"created_by_id = ? AND is_published = ? AND is_active = ?", []interface{}{creatorID, true, true},
		page, limit, "Genres")
	if err != nil {
		return utils.SendError(c, err)
	}
	return sendCollectionPage(c, collections, page, limit, total)
}

// GetCollectionsByGenre lists published collections tagged with a genre.
func GetCollectionsByGenre(c *fiber.Ctx) error {
	genreID, err := paramUUID(c, "genreId", "Genre not found")
	if err != nil {
		return utils.SendError(c, err)
	}
	if _, err := gallery.GetGenreBy(c.Context(), DB, "id = ?", []interface{}{genreID}); err != nil {
		return utils.SendError(c, err)
	}
	page, limit := pagination(c)

	collections, total, err := gallery.GetCollectionsByGenre(c.Context(), DB, genreID, page, limit, "Genres")
	if err != nil {
		return utils.SendError(c, err)
	}
	return sendCollectionPage(c, collections, page, limit, total)
}

// GetCollection shows a published collection in full. Opening it
// records the caller into the view set and reports whether they
// already liked it.
func GetCollection(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	col, err := gallery.GetCollectionBy(c.Context(), DB,
		"id = ? AND is_published = ? AND is_active = ?", []interface{}{id, true, true}, "Genres")
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := col.AddView(c.Context(), DB, principal.ID); err != nil {
		Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Failed to record view")
	}
	liked, err := col.LikedBy(c.Context(), DB, principal.ID)
	if err != nil {
		return utils.SendError(c, err)
	}
	owned, err := gallery.HasActivePurchase(c.Context(), DB, principal.ID, col.ID)
	if err != nil {
		return utils.SendError(c, err)
	}

	detail, err := collectionDetail(c, col)
	if err != nil {
		return utils.SendError(c, err)
	}
	detail["liked"] = liked
	detail["owned"] = owned
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"collection": detail}).Send()
}

// LikeCollection toggles the caller's like. Calling it twice lands
// back where it started.
func LikeCollection(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	col, err := gallery.GetCollectionBy(c.Context(), DB,
		"id = ? AND is_published = ? AND is_active = ?", []interface{}{id, true, true})
	if err != nil {
		return utils.SendError(c, err)
	}

	liked, count, err := col.ToggleLike(c.Context(), DB, principal.ID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{
		"liked":      liked,
		"likesCount": count,
	}).Send()
}

// RateCollection stores a 0-5 score, overwriting the caller's
// previous one.
func RateCollection(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := paramUUID(c, "id", "Collection not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	type RateInput struct {
		Rating *int `json:"rating" validate:"required,min=0,max=5"`
	}
	in := new(RateInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if in.Rating == nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Rating must be between 0 and 5")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Rating must be between 0 and 5")).Send()
	}

	col, err := gallery.GetCollectionBy(c.Context(), DB,
		"id = ? AND is_published = ? AND is_active = ?", []interface{}{id, true, true})
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := col.Rate(c.Context(), DB, principal.ID, *in.Rating); err != nil {
		return utils.SendError(c, err)
	}

	stats, err := col.Aggregates(c.Context(), DB)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{
		"rating":        *in.Rating,
		"averageRating": stats.AverageRating,
	}).Send()
}

func sendCollectionPage(c *fiber.Ctx, collections []gallery.Collection, page, limit int, total int64) error {
	summaries := make([]fiber.Map, 0, len(collections))
	for i := range collections {
		summary, err := collectionSummary(c, &collections[i])
		if err != nil {
			return utils.SendError(c, err)
		}
		summaries = append(summaries, summary)
	}
	return sendListing(c, len(summaries), fiber.Map{
		"collections": summaries,
		"pagination":  utils.NewPagination(page, limit, total),
	})
}
