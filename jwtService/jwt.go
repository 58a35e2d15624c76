package jwtService

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrNoToken      = errors.New("unauthorized access")
	ErrInvalidToken = errors.New("unauthorized token")
)

// Claims is the decoded payload of a verified token.
type Claims jwt.MapClaims

// Email returns the email claim, or "" when the token carries none.
func (c Claims) Email() string {
	email, _ := c["email"].(string)
	return email
}

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateJWT signs the caller supplied payload. The payload is trusted as
// is; only iat and exp are set here.
func (s *Service) GenerateJWT(payload map[string]interface{}) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.ttl).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT checks signature and expiry. Every failure is reported as
// ErrInvalidToken.
func (s *Service) ValidateJWT(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return Claims(claims), nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// Verify runs BearerToken and ValidateJWT on a raw header value.
func (s *Service) Verify(header string) (Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	return s.ValidateJWT(token)
}
