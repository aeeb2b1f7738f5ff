package v1

import (
	"github.com/arvue/arvue/internal/auth"
	"github.com/arvue/arvue/internal/media"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// publicUser is the projection safe to show to anybody.
func publicUser(u *user.User) fiber.Map {
	return fiber.Map{
		"id":             u.ID,
		"firstName":      u.FirstName,
		"lastName":       u.LastName,
		"username":       u.Username,
		"isArtist":       u.IsArtist,
		"profilePicture": u.ProfilePicture,
		"created_at":     u.CreatedAt,
	}
}

// GetUsers lists accounts in the public projection.
func GetUsers(c *fiber.Ctx) error {
	page, limit := pagination(c)

	users, total, err := user.GetUsers(c.Context(), DB, page, limit)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to list users")
		return utils.SendError(c, err)
	}

	out := make([]fiber.Map, 0, len(users))
	for i := range users {
		out = append(out, publicUser(&users[i]))
	}
	return sendListing(c, len(out), fiber.Map{
		"users":      out,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

// Me returns the caller's own account, balance included.
func Me(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{
		"id":             principal.ID,
		"firstName":      principal.FirstName,
		"lastName":       principal.LastName,
		"username":       principal.Username,
		"email":          principal.Email,
		"isArtist":       principal.IsArtist,
		"tokens":         principal.Tokens,
		"profilePicture": principal.ProfilePicture,
		"created_at":     principal.CreatedAt,
	}).Send()
}

// UpdateMe edits name and username.
func UpdateMe(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	type UpdateInput struct {
		FirstName *string `json:"firstName" validate:"omitempty,max=100"`
		LastName  *string `json:"lastName" validate:"omitempty,max=100"`
		Username  *string `json:"username" validate:"omitempty,min=3,max=50"`
	}
	in := new(UpdateInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed")).WithData(err).Send()
	}

	var opts []user.UserOption
	first, last := principal.FirstName, principal.LastName
	if in.FirstName != nil {
		first = *in.FirstName
	}
	if in.LastName != nil {
		last = *in.LastName
	}
	if in.FirstName != nil || in.LastName != nil {
		opts = append(opts, user.WithName(first, last))
	}
	if in.Username != nil && *in.Username != principal.Username {
		if _, err := user.GetUserBy(c.Context(), Redis, DB, "username = ?", []interface{}{*in.Username}); err == nil {
			return utils.Error(c, utils.NewError(utils.ErrConflict.Code, "Username already registered")).Send()
		}
		opts = append(opts, user.WithUsername(*in.Username))
	}

	if len(opts) == 0 {
		return utils.Success(c, fiber.StatusOK).WithData(publicUser(principal)).Send()
	}

	updated, err := user.UpdateUser(c.Context(), Redis, DB, principal.ID, opts...)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to update user")
		return utils.SendError(c, err)
	}
	return utils.Success(c, fiber.StatusOK).WithData(publicUser(updated)).Send()
}

// DeleteMe removes the caller's account.
func DeleteMe(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := user.DeleteUser(c.Context(), Redis, DB, principal.ID); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to delete user")
		return utils.SendError(c, err)
	}

	if !principal.ProfilePicture.Empty() {
		if err := Media.Delete(c.Context(), principal.ProfilePicture.FileName, media.KindProfileImage); err != nil {
			Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Orphaned profile picture left behind")
		}
	}

	Logger.Info(c.Context()).WithFields("user_id", principal.ID.String()).Logs("Account deleted")
	return utils.Success(c, fiber.StatusNoContent).Send()
}

// SetProfilePicture replaces the avatar: the new image is stored
// first, the old one deleted after the DB points at the replacement.
func SetProfilePicture(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	ref, err := uploadFormFile(c, "image", media.KindProfileImage)
	if err != nil {
		return utils.SendError(c, err)
	}

	old := principal.ProfilePicture
	updated, err := user.UpdateUser(c.Context(), Redis, DB, principal.ID, user.WithProfilePicture(ref))
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to store profile picture")
		return utils.SendError(c, err)
	}

	if !old.Empty() {
		if err := Media.Delete(c.Context(), old.FileName, media.KindProfileImage); err != nil {
			Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Failed to delete previous profile picture")
		}
	}

	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"profilePicture": updated.ProfilePicture}).Send()
}

// BecomeArtist flips the artist flag on the caller's account.
func BecomeArtist(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if principal.IsArtist {
		return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"isArtist": true}).Send()
	}

	updated, err := user.UpdateUser(c.Context(), Redis, DB, principal.ID, user.WithArtist(true))
	if err != nil {
		return utils.SendError(c, err)
	}

	// Existing tokens keep the old flag; issue a fresh one.
	token, err := auth.GenerateAccessToken(updated.ID, updated.IsArtist)
	if err != nil {
		return utils.SendError(c, err)
	}
	Logger.Info(c.Context()).WithFields("user_id", updated.ID.String()).Logs("Account upgraded to artist")
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"isArtist": true, "token": token}).Send()
}
