package v1

import (
	"github.com/arvue/arvue/internal/auth"
	gallery "github.com/arvue/arvue/internal/models/gallery"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreatePurchase buys a collection with tokens. Debit and purchase
// land atomically; the answer carries the remaining balance.
func CreatePurchase(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	type PurchaseInput struct {
		CollectionID string `json:"collectionId" validate:"required,uuid"`
	}
	in := new(PurchaseInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "collectionId is required")).Send()
	}

	collectionID, _ := uuid.Parse(in.CollectionID)
	purchase, err := gallery.CreatePurchase(c.Context(), DB, principal.ID, collectionID)
	if err != nil {
		Logger.Warn(c.Context()).WithFields("error", err.Error(), "user_id", principal.ID.String()).Logs("Purchase rejected")
		return utils.SendError(c, err)
	}

	// Balance changed inside the transaction; drop the stale cache and
	// reload for the response.
	user.InvalidateUser(c.Context(), Redis, principal.ID)
	fresh, err := user.GetUserByID(c.Context(), Redis, DB, principal.ID)
	if err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields(
		"purchase_id", purchase.ID.String(),
		"collection_id", collectionID.String(),
		"user_id", principal.ID.String(),
	).Logs("Collection purchased")

	return utils.Success(c, fiber.StatusCreated).WithData(fiber.Map{
		"purchase":   purchase,
		"tokensLeft": fresh.Tokens,
	}).Send()
}

// GetPurchases lists the caller's purchases with their collections.
func GetPurchases(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	page, limit := pagination(c)

	purchases, total, err := gallery.GetPurchases(c.Context(), DB, principal.ID, page, limit)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to list purchases")
		return utils.SendError(c, err)
	}

	return sendListing(c, len(purchases), fiber.Map{
		"purchases":  purchases,
		"pagination": utils.NewPagination(page, limit, total),
	})
}
