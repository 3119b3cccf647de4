package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/domain"
)

type Claims struct {
	StaffID uuid.UUID
	Email   string
	Role    domain.StaffRole
}

type tokenClaims struct {
	jwt.RegisteredClaims
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

func GenerateToken(staffID uuid.UUID, email string, role domain.StaffRole, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		StaffID: staffID.String(),
		Email:   email,
		Role:    string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}

	staffID, err := uuid.Parse(tc.StaffID)
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: invalid staff_id in token: %w", err)
	}

	return &Claims{
		StaffID: staffID,
		Email:   tc.Email,
		Role:    domain.StaffRole(tc.Role),
	}, nil
}
