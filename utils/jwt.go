package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tnqbao/gau-travel-service/config"
)

func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

// GenerateToken issues an HS256 access token carrying the user id.
func GenerateToken(userID string, config *config.EnvConfig) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user_id cannot be empty")
	}
	expiresAt := time.Now().Add(time.Duration(config.JWT.Expire) * time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(config.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func ParseToken(tokenString string, config *config.EnvConfig) (*jwt.Token, error) {
	secret := []byte(config.JWT.SecretKey)
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

func InjectClaimsToContext(c *gin.Context, claims jwt.MapClaims) error {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return errors.New("Invalid user_id format")
	}
	c.Set("user_id", userID)

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		c.Set("issued_at", iat.Time)
	}
	return nil
}

func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID := c.GetString("user_id")
	if userID == "" {
		return "", errors.New("user_id is missing from context")
	}
	return userID, nil
}
