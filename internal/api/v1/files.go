package v1

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arvue/arvue/internal/media"
	"github.com/arvue/arvue/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// Upload limits. Images gate covers, thumbnails and profile pictures;
// objects are the 3D models themselves.
const (
	MaxImageBytes  = 1 << 20
	MaxObjectBytes = 20 << 20
)

var (
	imageExts  = []string{".jpg", ".jpeg", ".png"}
	imageMIMEs = []string{"image/jpeg", "image/png"}

	objectExts  = []string{".glb", ".gltf"}
	objectMIMEs = []string{"model/gltf-binary", "model/gltf+json", "application/octet-stream"}
)

// ValidateImageUpload guards a route that may carry an image file.
func ValidateImageUpload(field string) fiber.Handler {
	return validateFile(field, MaxImageBytes, imageExts, imageMIMEs)
}

// ValidateObjectUpload guards a route that may carry a 3D model file.
func ValidateObjectUpload(field string) fiber.Handler {
	return validateFile(field, MaxObjectBytes, objectExts, objectMIMEs)
}

// uploadFormFile streams a multipart field to the media store and
// returns the persisted reference. Absence is a 400 here; routes with
// optional files check c.FormFile themselves first.
func uploadFormFile(c *fiber.Ctx, field string, kind media.Kind) (media.Ref, error) {
	file, err := c.FormFile(field)
	if err != nil || file == nil {
		return media.Ref{}, utils.NewError(utils.ErrBadRequest.Code, fmt.Sprintf("Missing %s file", field))
	}

	src, err := file.Open()
	if err != nil {
		return media.Ref{}, utils.WrapError(err, utils.ErrBadRequest.Code, "Could not read uploaded file")
	}
	defer src.Close()

	asset, err := Media.Upload(c.Context(), src, kind, file.Filename)
	if err != nil {
		Logger.Error(c.Context()).WithFields("error", err.Error(), "field", field).Logs("Media upload failed")
		return media.Ref{}, err
	}
	return media.RefOf(asset), nil
}

// validateFile rejects oversized or mistyped uploads before the
// controller runs. An absent file passes; controllers that require the
// file enforce presence themselves.
func validateFile(field string, maxSize int64, exts, mimes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile(field)
		if err != nil || file == nil {
			return c.Next()
		}

		if file.Size > maxSize {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code,
				fmt.Sprintf("File is too large. Max size allowed: %d MB.", maxSize>>20))).Send()
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !utils.Contains(exts, ext) {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code,
				fmt.Sprintf("File type %s is not allowed", ext))).Send()
		}

		mime := file.Header.Get(fiber.HeaderContentType)
		if mime != "" && !utils.Contains(mimes, mime) {
			return utils.Error(c, utils.NewError(utils.ErrBadRequest.Code,
				fmt.Sprintf("Content type %s is not allowed", mime))).Send()
		}

		return c.Next()
	}
}
