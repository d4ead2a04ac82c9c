package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	AccessTokenValidity  = time.Hour * 24
	RefreshTokenValidity = time.Hour * 24 * 7
)

// GenerateTokenPair returns a signed access and refresh token for a user.
func GenerateTokenPair(email string, secret string, isAdmin bool, userID uint, role string) (string, string, error) {
	accessClaims := jwt.MapClaims{
		"id":       userID,
		"email":    email,
		"role":     role,
		"is_admin": isAdmin,
		"type":     "access",
		"exp":      time.Now().Add(AccessTokenValidity).Unix(),
		"iat":      time.Now().Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"type":  "refresh",
		"exp":   time.Now().Add(RefreshTokenValidity).Unix(),
		"iat":   time.Now().Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateAndGetClaims parses a bearer token and returns its claims when the
// signature and expiry check out.
func ValidateAndGetClaims(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
