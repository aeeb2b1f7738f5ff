package db

import (
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/arvue/arvue/pkg/logger"
)

// WithLogger bridges the app logger into GORM's query logging.
func WithLogger(log *logger.Logger) DBOptions {
	return func(db *gorm.DB) error {
		db.Config.Logger = gormLogger.New(
			log.Log,
			gormLogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
		return nil
	}
}
