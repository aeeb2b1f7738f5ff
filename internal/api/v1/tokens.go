package v1

import (
	"github.com/arvue/arvue/internal/auth"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// TopUpTokens credits the caller's balance. The increment is atomic so
// parallel top-ups never lose a credit.
func TopUpTokens(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	type TopUpInput struct {
		Amount int64 `json:"amount" validate:"required,min=1"`
	}
	in := new(TopUpInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Amount must be a positive integer")).Send()
	}

	updated, err := user.AddTokens(c.Context(), Redis, DB, principal.ID, in.Amount)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to credit tokens")
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("user_id", principal.ID.String()).Logs("Tokens credited")
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{"tokens": updated.Tokens}).Send()
}
