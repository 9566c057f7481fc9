package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
)

const emailClaim = "email"

type AuthService interface {
	GenerateToken(email string) (string, error)
	ParseToken(token string) (string, error)
}

type authServiceImpl struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(secretKey string, ttl time.Duration) AuthService {
	return &authServiceImpl{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (that *authServiceImpl) GenerateToken(email string) (string, error) {
	now := that.now()

	claims := jwt.MapClaims{
		emailClaim: email,
		"iat":      now.Unix(),
		"exp":      now.Add(that.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken - verifies the signature and expiry and returns the email claim.
func (that *authServiceImpl) ParseToken(tokenString string) (string, error) {
	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return that.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(that.now),
	)
	if err != nil {
		return "", errors.Join(apperror.ErrInvalidToken, err)
	}

	email, ok := claims[emailClaim].(string)
	if !ok || email == "" {
		return "", apperror.ErrInvalidToken
	}

	return email, nil
}
