package v1

import (
	"strings"

	gallery "github.com/arvue/arvue/internal/models/gallery"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SearchCollections looks a query up two ways over the published set:
// full-text relevance where the database supports it, then a
// case-insensitive substring match on the title. The union keeps text
// hits first and drops duplicates.
func SearchCollections(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Search query is required")).Send()
	}
	page, limit := pagination(c)

	var textHits []gallery.Collection
	if DB.Dialector.Name() == "postgres" {
		err := DB.WithContext(c.Context()).
			Where("is_published = ? AND is_active = ?", true, true).
			Where("to_tsvector('simple', title || ' ' || description) @@ plainto_tsquery('simple', ?)", query).
			Order("ts_rank(to_tsvector('simple', title || ' ' || description), plainto_tsquery('simple', ?)) DESC").
			Find(&textHits, query).Error
		if err != nil {
			Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Full-text lookup failed, substring only")
			textHits = nil
		}
	}

	var substrHits []gallery.Collection
	err := DB.WithContext(c.Context()).
		Where("is_published = ? AND is_active = ?", true, true).
		Where("LOWER(title) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("created_at DESC").
		Find(&substrHits).Error
	if err != nil {
		return utils.SendError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Search failed"))
	}

	union := unionCollections(textHits, substrHits)
	pageSlice, total := paginateSlice(len(union), page, limit)
	union = union[pageSlice[0]:pageSlice[1]]

	summaries := make([]fiber.Map, 0, len(union))
	for i := range union {
		summary, err := collectionSummary(c, &union[i])
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

// SearchArtists runs the same two-strategy union over artist accounts,
// matching the username.
func SearchArtists(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Search query is required")).Send()
	}
	page, limit := pagination(c)

	var textHits []user.User
	if DB.Dialector.Name() == "postgres" {
		err := DB.WithContext(c.Context()).
			Where("is_artist = ?", true).
			Where("to_tsvector('simple', username || ' ' || first_name || ' ' || last_name) @@ plainto_tsquery('simple', ?)", query).
			Find(&textHits).Error
		if err != nil {
			Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Full-text lookup failed, substring only")
			textHits = nil
		}
	}

	var substrHits []user.User
	err := DB.WithContext(c.Context()).
		Where("is_artist = ?", true).
		Where("LOWER(username) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("created_at DESC").
		Find(&substrHits).Error
	if err != nil {
		return utils.SendError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Search failed"))
	}

	seen := make(map[uuid.UUID]bool, len(textHits)+len(substrHits))
	union := make([]user.User, 0, len(textHits)+len(substrHits))
	for _, bucket := range [][]user.User{textHits, substrHits} {
		for _, u := range bucket {
			if !seen[u.ID] {
				seen[u.ID] = true
				union = append(union, u)
			}
		}
	}

	pageSlice, total := paginateSlice(len(union), page, limit)
	union = union[pageSlice[0]:pageSlice[1]]

	out := make([]fiber.Map, 0, len(union))
	for i := range union {
		out = append(out, publicUser(&union[i]))
	}
	return sendListing(c, len(out), fiber.Map{
		"artists":    out,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

func unionCollections(first, second []gallery.Collection) []gallery.Collection {
	seen := make(map[uuid.UUID]bool, len(first)+len(second))
	union := make([]gallery.Collection, 0, len(first)+len(second))
	for _, bucket := range [][]gallery.Collection{first, second} {
		for _, col := range bucket {
			if !seen[col.ID] {
				seen[col.ID] = true
				union = append(union, col)
			}
		}
	}
	return union
}

// paginateSlice clamps an in-memory page window to the union size.
func paginateSlice(n, page, limit int) ([2]int, int64) {
	start := (page - 1) * limit
	if start > n {
		start = n
	}
	end := start + limit
	if end > n {
		end = n
	}
	return [2]int{start, end}, int64(n)
}
