package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/adityaraut/dairydrop-backend/pkg/config"
)

// RefreshTokenClaims is the payload carried by long-lived refresh tokens.
// Refresh tokens are signed with a separate secret so a leaked access
// secret cannot be used to mint new sessions.
type RefreshTokenClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// MintRefreshToken issues a refresh token for the user and returns the
// signed token together with its expiry and token id.
func MintRefreshToken(cfg config.JWTConfig, now time.Time, userID int64) (string, time.Time, string, error) {
	if cfg.RefreshSecret == "" {
		return "", time.Time{}, "", fmt.Errorf("jwt refresh secret is required")
	}
	if cfg.Issuer == "" {
		return "", time.Time{}, "", fmt.Errorf("jwt issuer is required")
	}
	if cfg.RefreshExpiryHours <= 0 {
		return "", time.Time{}, "", fmt.Errorf("jwt refresh expiry hours must be positive")
	}
	if userID <= 0 {
		return "", time.Time{}, "", fmt.Errorf("user id is required")
	}

	jti := strings.ReplaceAll(uuid.NewString(), "-", "")
	expiresAt := now.Add(time.Duration(cfg.RefreshExpiryHours) * time.Hour)

	claims := RefreshTokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.RefreshSecret))
	if err != nil {
		return "", time.Time{}, "", fmt.Errorf("signing refresh jwt: %w", err)
	}
	return signed, expiresAt, jti, nil
}

// ParseRefreshToken validates a refresh token string and returns typed claims.
func ParseRefreshToken(cfg config.JWTConfig, tokenString string) (*RefreshTokenClaims, error) {
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("jwt refresh secret is required")
	}

	claims := &RefreshTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.RefreshSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}

	return claims, nil
}
