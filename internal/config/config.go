package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisAddr     string
	ServerAddr    string
	JWTSecret     string
	MediaBaseURL  string
	MediaAPIKey   string
	MediaCloud    string
	LogDir        string
	AllowedOrigin string
}

func LoadConfig() *Config {
	godotenv.Load()
	return &Config{
		Env:           getenv("APP_ENV", "development"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASS"),
		DBName:        getenv("DB_NAME", "arvue"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		ServerAddr:    getenv("PORT", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		MediaBaseURL:  os.Getenv("MEDIA_BASE_URL"),
		MediaAPIKey:   os.Getenv("MEDIA_API_KEY"),
		MediaCloud:    os.Getenv("MEDIA_CLOUD"),
		LogDir:        getenv("LOG_DIR", "./logs"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}
}

// DSN assembles the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// Production reports whether the app runs in production mode; error
// responses hide diagnostic details in that case.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
