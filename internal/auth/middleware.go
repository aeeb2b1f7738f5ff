package auth

import (
	"strings"

	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys set by Protected for downstream handlers.
const (
	LocalUser   = "auth_user"
	LocalUserID = "user_id"
)

// Protected verifies the Authorization bearer token, loads the
// principal and stores it in c.Locals. Every failure is a uniform 401
// emitted before any handler logic runs.
func Protected(opt Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return unauthorized(c, "Missing bearer token")
		}

		claims, err := VerifyToken(token)
		if err != nil {
			if opt.Logger != nil {
				opt.Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Token rejected")
			}
			if err == ErrExpiredToken {
				return unauthorized(c, "Token has expired")
			}
			return unauthorized(c, "Invalid token")
		}

		uid, err := uuid.Parse(claims.UserID)
		if err != nil {
			return unauthorized(c, "Invalid token")
		}

		u, err := user.GetUserByID(c.Context(), opt.Rclient, opt.DB, uid)
		if err != nil {
			if opt.Logger != nil {
				opt.Logger.Warn(c.Context()).WithFields("user_id", claims.UserID).Logs("Principal not found")
			}
			return unauthorized(c, "User not found")
		}

		c.Locals(LocalUser, u)
		c.Locals(LocalUserID, u.ID.String())
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return utils.Error(c, utils.NewError(utils.ErrUnauthorized.Code, msg)).Send()
}
