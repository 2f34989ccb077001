package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stockers-dev/stockers-api/config"
)

// GenerateAccessToken mints a signed, self-contained access token for the
// given user. The signing secret and algorithm come from startup config and
// never change afterwards.
func GenerateAccessToken(jwtCfg config.JWTConfig, userID, role string) (string, error) {
	method := jwt.GetSigningMethod(jwtCfg.Algorithm)
	if method == nil {
		return "", fmt.Errorf("unknown signing algorithm %q", jwtCfg.Algorithm)
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtCfg.AccessTokenTTL)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
