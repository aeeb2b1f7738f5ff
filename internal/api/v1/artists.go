package v1

import (
	gallery "github.com/arvue/arvue/internal/models/gallery"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// GetArtists lists artist accounts with how many published collections
// each one has.
func GetArtists(c *fiber.Ctx) error {
	page, limit := pagination(c)

	artists, total, err := user.GetArtists(c.Context(), DB, page, limit)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to list artists")
		return utils.SendError(c, err)
	}

	out := make([]fiber.Map, 0, len(artists))
	for i := range artists {
		a := &artists[i]
		var count int64
		err := DB.WithContext(c.Context()).Model(&gallery.Collection{}).
			Where("created_by_id = ? AND is_published = ? AND is_active = ?", a.ID, true, true).
			Count(&count).Error
		if err != nil {
			return utils.SendError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count collections"))
		}
		entry := publicUser(a)
		entry["collectionsCount"] = count
		out = append(out, entry)
	}

	return sendListing(c, len(out), fiber.Map{
		"artists":    out,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

// GetArtist shows one artist with their published collections and the
// derived counters per collection.
func GetArtist(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id", "Artist not found")
	if err != nil {
		return utils.SendError(c, err)
	}

	artist, err := user.GetUserBy(c.Context(), Redis, DB, "id = ? AND is_artist = ?", []interface{}{id, true})
	if err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrNotFound.Code, "Artist not found"))
	}

	collections, _, err := gallery.GetCollections(c.Context(), DB,
		"created_by_id = ? AND is_published = ? AND is_active = ?", []interface{}{artist.ID, true, true},
		1, maxLimit, "Genres")
	if err != nil {
		return utils.SendError(c, err)
	}

	summaries := make([]fiber.Map, 0, len(collections))
	for i := range collections {
		summary, err := collectionSummary(c, &collections[i])
		if err != nil {
			return utils.SendError(c, err)
		}
		summaries = append(summaries, summary)
	}

	out := publicUser(artist)
	out["collections"] = summaries
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"artist": out}).Send()
}
