package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 24 * time.Hour
)

// GenerateAccessToken signe un jeton d'accès court (30 min) porté en
// header Authorization.
func GenerateAccessToken(userID, email, role string) (string, error) {
	secret := os.Getenv("ACCESS_TOKEN_SECRET")
	if secret == "" {
		return "", errors.New("ACCESS_TOKEN_SECRET non défini")
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"exp":     time.Now().Add(AccessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateRefreshToken signe le jeton long (24 h) posé en cookie httpOnly.
func GenerateRefreshToken(email string) (string, error) {
	secret := os.Getenv("REFRESH_TOKEN_SECRET")
	if secret == "" {
		return "", errors.New("REFRESH_TOKEN_SECRET non défini")
	}

	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(RefreshTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseRefreshToken vérifie le cookie de refresh et retourne l'email.
func ParseRefreshToken(tokenString string) (string, error) {
	secret := os.Getenv("REFRESH_TOKEN_SECRET")
	if secret == "" {
		return "", errors.New("REFRESH_TOKEN_SECRET non défini")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("méthode de signature inattendue")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("refresh token invalide")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("claims invalides")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", errors.New("email manquant dans le refresh token")
	}
	return email, nil
}
