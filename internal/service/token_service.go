package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ossgate/internal/config"
	"ossgate/internal/domain"
)

// OwnerID is the userId claim. Clients issue it either as a JSON number or
// as a string.
type OwnerID string

func (o *OwnerID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = OwnerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("userId claim: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*o = OwnerID(strconv.FormatInt(i, 10))
		return nil
	}
	// 10001.0 and 1e4 are the same owner as 10001.
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return fmt.Errorf("userId claim: %s is not an integer", n)
	}
	*o = OwnerID(strconv.FormatInt(int64(f), 10))
	return nil
}

// Claims represents the JWT claims identifying the uploading user.
type Claims struct {
	jwt.RegisteredClaims
	UserID OwnerID `json:"userId"`
}

// TokenService validates bearer tokens and mints them for operators.
type TokenService interface {
	Issue(ownerID string) (string, time.Time, error)
	Validate(tokenString string) (*Claims, error)
}

type tokenService struct {
	cfg config.JWTConfig
}

// NewTokenService creates a new TokenService implementation.
func NewTokenService(cfg config.JWTConfig) TokenService {
	return &tokenService{cfg: cfg}
}

func (s *tokenService) Issue(ownerID string) (string, time.Time, error) {
	if s.cfg.Secret == "" {
		return "", time.Time{}, fmt.Errorf("signing token: jwt secret not configured")
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.Expiry)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
		UserID: OwnerID(ownerID),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *tokenService) Validate(tokenString string) (*Claims, error) {
	if s.cfg.Secret == "" {
		return nil, domain.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
