// Package routes mounts the middleware chain and the /api/v1 surface.
package routes

import (
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	v1 "github.com/arvue/arvue/internal/api/v1"
	"github.com/arvue/arvue/internal/auth"
	"github.com/arvue/arvue/internal/config"
	"github.com/arvue/arvue/internal/media"
	"github.com/arvue/arvue/pkg/logger"
	storage "github.com/arvue/arvue/pkg/redis"
	"gorm.io/gorm"
)

// NewRoutes wires middleware and every route group onto the app.
// Lifecycle teardown of the injected dependencies stays with the
// caller.
func NewRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, log *logger.Logger, rclient *storage.RedisClient, store media.Store) {
	app.Use(
		logger.SetupLogger(log),
		recover.New(),
		cors.New(cors.Config{
			AllowOrigins: cfg.AllowedOrigin,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}),
		compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
		}),
		limiter.New(limiter.Config{
			Expiration: 1 * time.Minute,
			Max:        120,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
		}),
	)
	app.Use(log.Middleware())

	// Prometheus collectors register globally, so tests wiring several
	// apps in one process opt out.
	if cfg.Env != "test" {
		prometheus := fiberprometheus.New("arvue")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	v1.Setup(db, rclient, log, store)
	protected := auth.Protected(auth.Options{DB: db, Rclient: rclient, Logger: log})

	api := app.Group("/api/v1")

	api.Post("/auth/signup", v1.Signup)
	api.Post("/auth/login", v1.Login)
	api.Post("/auth/change-password", protected, v1.ChangePassword)

	api.Get("/users", v1.GetUsers)

	users := api.Group("/users", protected)
	users.Get("/me", v1.Me)
	users.Patch("/me", v1.UpdateMe)
	users.Delete("/me", v1.DeleteMe)
	users.Put("/me/picture", v1.ValidateImageUpload("image"), v1.SetProfilePicture)
	users.Post("/me/become-artist", v1.BecomeArtist)

	api.Post("/tokens/topup", protected, v1.TopUpTokens)

	artists := api.Group("/artists")
	artists.Get("/", v1.GetArtists)
	artists.Get("/:id", v1.GetArtist)

	mine := api.Group("/artist/collections", protected)
	mine.Post("/", v1.ValidateImageUpload("coverImage"), v1.CreateCollection)
	mine.Get("/", v1.GetMyCollections)
	mine.Get("/:id", v1.GetMyCollection)
	mine.Patch("/:id", v1.ValidateImageUpload("coverImage"), v1.UpdateCollection)
	mine.Delete("/:id", v1.DeleteCollection)
	mine.Post("/:id/objects", v1.AddCollectionObjects)
	mine.Put("/:id/objects", v1.ReplaceCollectionObjects)
	mine.Post("/:id/publish", v1.TogglePublishCollection)

	collections := api.Group("/collections", protected)
	collections.Get("/", v1.GetCollections)
	collections.Get("/creator/:creatorId", v1.GetCollectionsByCreator)
	collections.Get("/genre/:genreId", v1.GetCollectionsByGenre)
	collections.Get("/:id", v1.GetCollection)
	collections.Post("/:id/like", v1.LikeCollection)
	collections.Post("/:id/rate", v1.RateCollection)

	objects := api.Group("/objects", protected)
	objects.Post("/", v1.ValidateObjectUpload("file"), v1.CreateObject)
	objects.Get("/", v1.GetObjects)
	objects.Get("/collection/:collectionId", v1.GetObjectsByCollection)
	objects.Get("/:id", v1.GetObject)
	objects.Patch("/:id", v1.UpdateObject)
	objects.Delete("/:id", v1.DeleteObject)
	objects.Put("/:id/thumbnail", v1.ValidateImageUpload("thumbnail"), v1.SetObjectThumbnail)
	objects.Delete("/:id/thumbnail", v1.DeleteObjectThumbnail)

	placed := api.Group("/placed-objects", protected)
	placed.Post("/", v1.SavePlacedObject)
	placed.Get("/collection/:collectionId", v1.GetPlacedObjectsByCollection)
	placed.Get("/:id", v1.GetPlacedObject)
	placed.Delete("/:id", v1.DeletePlacedObject)

	purchases := api.Group("/purchases", protected)
	purchases.Post("/", v1.CreatePurchase)
	purchases.Get("/", v1.GetPurchases)

	genres := api.Group("/genres")
	genres.Get("/", v1.GetGenres)
	genres.Get("/:id", v1.GetGenre)
	genres.Post("/", protected, v1.CreateGenre)

	search := api.Group("/search", protected)
	search.Get("/collections", v1.SearchCollections)
	search.Get("/artists", v1.SearchArtists)
}
