package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var JWTSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Development fallback only; set JWT_SECRET in any real deployment.
		secret = "hostel-app-dev-secret"
	}
	JWTSecret = []byte(secret)
}

// CustomClaims carries only the user ID. Roles are per-hostel bindings and
// are resolved from the database on every request so revocation is
// immediate.
type CustomClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

func tokenLifetime() time.Duration {
	hours := 24
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			hours = parsed
		}
	}
	return time.Duration(hours) * time.Hour
}

func GenerateToken(userID uint) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique jti keeps two same-second logins from minting
			// identical tokens, which matters for the logout blacklist.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "hostel-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
