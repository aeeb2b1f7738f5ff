package v1

import (
	"fmt"
	"strings"
	"time"

	"github.com/arvue/arvue/internal/auth"
	user "github.com/arvue/arvue/internal/models/user"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const (
	minPasswordLen   = 8
	loginMaxAttempts = 5
	loginWindow      = 15 * time.Minute
)

// Signup registers an account and answers with a ready-to-use token.
func Signup(c *fiber.Ctx) error {
	type SignupInput struct {
		FirstName string `json:"firstName" validate:"required,max=100"`
		LastName  string `json:"lastName" validate:"required,max=100"`
		Username  string `json:"username" validate:"required,min=3,max=50"`
		Email     string `json:"email" validate:"required,email,max=100"`
		Password  string `json:"password" validate:"required,min=8"`
		IsArtist  bool   `json:"isArtist"`
	}
	in := new(SignupInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		Logger.Warn(c.Context()).WithFields("error", err.Error()).Logs("Failed to parse signup body")
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}

	if err := Validator.Validate(in); err != nil {
		Logger.Warn(c.Context()).Logs(fmt.Sprintf("Signup validation failed: %s", err))
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed")).WithData(err).Send()
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if !utils.ValidEmail(in.Email) {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid email address")).Send()
	}

	// Name the colliding field so the client can highlight it.
	if _, err := user.GetUserBy(c.Context(), Redis, DB, "username = ?", []interface{}{in.Username}); err == nil {
		return utils.Error(c, utils.NewError(utils.ErrConflict.Code, "Username already registered")).Send()
	}
	if _, err := user.GetUserBy(c.Context(), Redis, DB, "email = ?", []interface{}{in.Email}); err == nil {
		return utils.Error(c, utils.NewError(utils.ErrConflict.Code, "Email already registered")).Send()
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to hash password")
		return utils.SendError(c, err)
	}

	u, err := user.NewUser(c.Context(), Redis, DB, in.FirstName, in.LastName, in.Username, in.Email, hash,
		user.WithArtist(in.IsArtist))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return utils.Error(c, utils.NewError(utils.ErrConflict.Code, "Username or email already registered")).Send()
		}
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to create user")
		return utils.SendError(c, err)
	}

	token, err := auth.GenerateAccessToken(u.ID, u.IsArtist)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to sign token")
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("user_id", u.ID.String()).Logs("User registered")
	return utils.Success(c, fiber.StatusCreated).WithData(fiber.Map{
		"id":       u.ID,
		"isArtist": u.IsArtist,
		"token":    token,
	}).Send()
}

// Login verifies credentials and issues a token. Attempts per IP are
// throttled through Redis when it is configured.
func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	in := new(LoginInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Email and password are required")).Send()
	}

	if Redis != nil {
		key := "login_attempts:" + c.IP()
		attempts, _ := Redis.Incr(c.Context(), key).Result()
		if attempts == 1 {
			Redis.Expire(c.Context(), key, loginWindow)
		}
		if attempts > loginMaxAttempts {
			Logger.Warn(c.Context()).WithFields("ip", c.IP()).Logs("Login throttled")
			return utils.Error(c, utils.NewError(fiber.StatusTooManyRequests, "Too many login attempts, try again later")).Send()
		}
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := user.GetUserBy(c.Context(), Redis, DB, "email = ?", []interface{}{email})
	if err != nil {
		return utils.Error(c, utils.NewError(utils.ErrUnauthorized.Code, "Invalid email or password")).Send()
	}

	if err := utils.ComparePasswords(u.PasswordHash, in.Password); err != nil {
		Logger.Warn(c.Context()).WithFields("user_id", u.ID.String()).Logs("Password mismatch")
		return utils.Error(c, utils.NewError(utils.ErrUnauthorized.Code, "Invalid email or password")).Send()
	}

	token, err := auth.GenerateAccessToken(u.ID, u.IsArtist)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to sign token")
		return utils.SendError(c, err)
	}

	if Redis != nil {
		Redis.Del(c.Context(), "login_attempts:"+c.IP())
	}

	Logger.Info(c.Context()).WithFields("user_id", u.ID.String()).Logs("User logged in")
	return utils.Success(c, fiber.StatusOK).WithData(fiber.Map{
		"id":       u.ID,
		"isArtist": u.IsArtist,
		"token":    token,
	}).Send()
}

// ChangePassword re-verifies the old password before storing a new one.
func ChangePassword(c *fiber.Ctx) error {
	principal, err := auth.Principal(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	type ChangeInput struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}
	in := new(ChangeInput)
	if err := utils.StrictBodyParser(c, in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format")).Send()
	}
	if err := Validator.Validate(in); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code,
			fmt.Sprintf("New password must be at least %d characters", minPasswordLen))).Send()
	}

	// The cached principal is serialized without its hash; read it
	// from the database before comparing.
	stored, err := user.GetUserBy(c.Context(), Redis, DB, "id = ?", []interface{}{principal.ID})
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := utils.ComparePasswords(stored.PasswordHash, in.OldPassword); err != nil {
		return utils.Error(c, utils.NewError(utils.ErrUnauthorized.Code, "Current password is incorrect")).Send()
	}
	if in.NewPassword == in.OldPassword {
		return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code, "New password must differ from the current one")).Send()
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := stored.SetPassword(c.Context(), Redis, DB, hash); err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error()).Logs("Failed to store new password")
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("user_id", principal.ID.String()).Logs("Password changed")
	return utils.Success(c, fiber.StatusOK).WithMessage("Password updated").Send()
}
