package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	jwtSecretKey    = []byte(os.Getenv("JWT_SECRET"))
)

// TokenTTL bounds how long an issued bearer token stays valid.
const TokenTTL = 24 * time.Hour

// SetSecret overrides the signing key loaded from the environment.
// Called from wiring after the config is read, and from tests.
func SetSecret(secret string) {
	jwtSecretKey = []byte(secret)
}

type Claims struct {
	UserID   string `json:"user_id"`
	IsArtist bool   `json:"is_artist"`
	jwt.RegisteredClaims
}

// GenerateAccessToken issues a signed bearer token for the user.
func GenerateAccessToken(userID uuid.UUID, isArtist bool) (string, error) {
	claims := Claims{
		UserID:   userID.String(),
		IsArtist: isArtist,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "arvue",
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecretKey)
}

// VerifyToken parses and validates a bearer token, rejecting any
// signing method other than HMAC.
func VerifyToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
