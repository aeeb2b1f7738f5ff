package v1

import (
	gallery "github.com/arvue/arvue/internal/models/gallery"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// collectionSummary is the list projection: metadata plus derived
// counters, no object payloads.
func collectionSummary(c *fiber.Ctx, col *gallery.Collection) (fiber.Map, error) {
	stats, err := col.Aggregates(c.Context(), DB)
	if err != nil {
		return nil, err
	}
	count, err := col.ObjectCount(c.Context(), DB)
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"id":            col.ID,
		"type":          col.Type,
		"title":         col.Title,
		"description":   col.Description,
		"city":          col.City,
		"price":         col.Price,
		"coverImage":    col.CoverImage,
		"genres":        col.Genres,
		"createdBy":     col.CreatedByID,
		"isPublished":   col.IsPublished,
		"objectsCount":  count,
		"likesCount":    stats.LikesCount,
		"viewsCount":    stats.ViewsCount,
		"averageRating": stats.AverageRating,
		"created_at":    col.CreatedAt,
	}, nil
}

// collectionDetail expands the summary with the ordered object list,
// location and the creator's public profile.
func collectionDetail(c *fiber.Ctx, col *gallery.Collection) (fiber.Map, error) {
	if err := col.LoadObjects(c.Context(), DB); err != nil {
		return nil, err
	}
	out, err := collectionSummary(c, col)
	if err != nil {
		return nil, err
	}
	creator, err := user.GetUserBy(c.Context(), Redis, DB, "id = ?", []interface{}{col.CreatedByID})
	if err != nil {
		return nil, err
	}
	out["creator"] = publicUser(creator)
	out["objects"] = col.Objects
	out["maxObjects"] = col.MaxObjects
	out["lat"] = col.Lat
	out["lon"] = col.Lon
	return out, nil
}

// resolveGenres parses genre ids from a request and confirms they all
// exist before they get attached.
func resolveGenres(c *fiber.Ctx, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, utils.NewError(utils.ErrBadRequest.Code, "Some genres do not exist")
		}
		ids = append(ids, id)
	}
	_, ok, err := gallery.GenresExist(c.Context(), DB, ids)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewError(utils.ErrBadRequest.Code, "Some genres do not exist")
	}
	return ids, nil
}
