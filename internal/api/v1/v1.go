// Package v1 holds the HTTP controllers for the /api/v1 surface.
package v1

import (
	"strconv"

	"github.com/arvue/arvue/internal/media"
	"github.com/arvue/arvue/pkg/logger"
	storage "github.com/arvue/arvue/pkg/redis"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	Redis     *storage.RedisClient
	Logger    *logger.Logger
	Media     media.Store
	Validator = utils.NewValidator()
)

// Setup injects the shared dependencies before routes are mounted.
func Setup(db *gorm.DB, rclient *storage.RedisClient, log *logger.Logger, store media.Store) {
	DB = db
	Redis = rclient
	Logger = log
	Media = store
}

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// pagination reads page/limit query params with sane bounds.
func pagination(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", strconv.Itoa(defaultPage)))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// sendListing answers a listing endpoint. A valid query that matched
// nothing is not an error: it answers 204 with an empty payload.
func sendListing(c *fiber.Ctx, count int, data fiber.Map) error {
	if count == 0 {
		return utils.Success(c, fiber.StatusNoContent).Send()
	}
	return utils.Success(c, fiber.StatusOK).WithData(data).Send()
}

// paramUUID parses a uuid route parameter, failing with the given
// not-found message so malformed ids do not leak which ids exist.
func paramUUID(c *fiber.Ctx, name, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, utils.NewError(utils.ErrNotFound.Code, notFound)
	}
	return id, nil
}
