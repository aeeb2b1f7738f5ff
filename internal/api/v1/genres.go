package v1

import (
	"github.com/arvue/arvue/internal/auth"
	gallery "github.com/arvue/arvue/internal/models/gallery"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// CreateGenre adds a tag. Names normalize to capitalized segments and
// collide case-insensitively.
func CreateGenre(c *fiber.Ctx) error {
	if _, err := auth.RequireArtist(c); err != nil {
		return utils.SendError(c, err)
	}

	type GenreInput struct {
		Name string `json:"name" validate:"required,min=1,max=35,genrename"`
	}
	in := new(GenreInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed")).WithData(err).Send()
	}

	g, err := gallery.NewGenre(c.Context(), DB, in.Name)
	if err != nil {
		Logger.Warn(c.Context()).WithFields("error", err.Error(), "name", in.Name).Logs("Genre rejected")
		return utils.SendError(c, err)
	}

	return utils.Success(c, fiber.StatusCreated).WithData(fiber.Map{"genre": g}).Send()
}

// GetGenres lists every genre.
func GetGenres(c *fiber.Ctx) error {
	genres, err := gallery.GetGenres(c.Context(), DB)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to list genres")
		return utils.SendError(c, err)
	}
	return sendListing(c, len(genres), fiber.Map{"genres": genres})
}

// GetGenre shows one genre.
func GetGenre(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id", "Genre not found")
	if err != nil {
		return utils.SendError(c, err)
	}
	g, err := gallery.GetGenreBy(c.Context(), DB, "id = ?", []interface{}{id})
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"genre": g}).Send()
}
