package jwtService

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
)

func TestGenerateAndValidate(t *testing.T) {
	s := New("secret", 72*time.Hour)

	token, err := s.GenerateJWT(map[string]interface{}{"email": "a@example.com"})
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := s.Verify("Bearer " + token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Email() != "a@example.com" {
		t.Errorf("Email() = %q", claims.Email())
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatalf("exp claim missing: %v", claims)
	}
	want := time.Now().Add(72 * time.Hour).Unix()
	if d := int64(exp) - want; d < -5 || d > 5 {
		t.Errorf("exp = %d, want about %d", int64(exp), want)
	}
}

func TestValidateRejects(t *testing.T) {
	s := New("secret", time.Hour)
	good, err := s.GenerateJWT(map[string]interface{}{"email": "a@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	expired := New("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateJWT(map[string]interface{}{"email": "a@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	otherKey, err := New("other", time.Hour).GenerateJWT(map[string]interface{}{"email": "a@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"email": "a@example.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", old},
		{"wrong secret", otherKey},
		{"tampered payload", tampered},
		{"alg none", none},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.ValidateJWT(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateJWT() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"", "", ErrNoToken},
		{"Bearer", "", ErrInvalidToken},
		{"Bearer ", "", ErrInvalidToken},
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("BearerToken(%q) error = %v, want %v", tt.header, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestPayloadCannotExtendExpiry(t *testing.T) {
	s := New("secret", time.Hour)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := s.GenerateJWT(map[string]interface{}{
		"email": "a@example.com",
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ValidateJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("caller exp must be overridden, got err = %v", err)
	}
}
