// Package auth carries token issuing, the bearer middleware and the
// authorization guard shared by every protected route.
package auth

import (
	"github.com/arvue/arvue/pkg/logger"
	storage "github.com/arvue/arvue/pkg/redis"
	"gorm.io/gorm"
)

// Options bundles what the middleware needs. Rclient may be nil; the
// middleware then skips caching and loads the principal from the DB.
type Options struct {
	DB      *gorm.DB
	Rclient *storage.RedisClient
	Logger  *logger.Logger
}
